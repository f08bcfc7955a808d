// Package events streams booking and room changes to subscribers as server-sent events
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/navikt/roombook/internal/models"
	"github.com/r3labs/sse/v2"
)

// Stream names accepted in the "stream" query parameter
const (
	StreamBookings = "bookings"
	StreamRooms    = "rooms"
)

// Broker fans out change notifications to connected SSE clients
type Broker struct {
	server *sse.Server
}

// NewBroker creates a broker with the bookings and rooms streams registered.
// With replay enabled new subscribers receive every event published so far.
func NewBroker(replay bool) *Broker {
	server := sse.New()
	server.AutoReplay = replay
	server.AutoStream = false
	server.Headers = map[string]string{
		"X-Accel-Buffering": "no",
	}

	server.CreateStream(StreamBookings)
	server.CreateStream(StreamRooms)

	return &Broker{server: server}
}

// PublishBooking sends a booking change on the bookings stream.
// It matches service.BookingUpdateCallback.
func (b *Broker) PublishBooking(event models.BookingEvent) {
	b.publish(StreamBookings, string(event.Type), event)
}

// PublishRoom sends a room change on the rooms stream.
// It matches service.RoomUpdateCallback.
func (b *Broker) PublishRoom(event models.RoomEvent) {
	b.publish(StreamRooms, string(event.Type), event)
}

func (b *Broker) publish(stream, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode event", "stream", stream, "type", eventType, "error", err)
		return
	}

	b.server.Publish(stream, &sse.Event{
		Event: []byte(eventType),
		Data:  data,
	})
	slog.Debug("event published", "stream", stream, "type", eventType)
}

// HasStream reports whether the named stream exists
func (b *Broker) HasStream(stream string) bool {
	return b.server.StreamExists(stream)
}

// ServeHTTP subscribes the caller to the stream named by the "stream" query parameter
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.server.ServeHTTP(w, r)
}

// Close disconnects every subscriber
func (b *Broker) Close() {
	b.server.Close()
	slog.Info("event broker closed")
}
