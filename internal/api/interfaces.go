package api

import (
	"context"
	"net/http"

	"github.com/navikt/roombook/internal/models"
)

// RoomServicer defines the room operations needed by API handlers
type RoomServicer interface {
	CreateRoom(ctx context.Context, in models.RoomInput) (*models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	UpdateRoom(ctx context.Context, id string, in models.RoomInput) (*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// BookingServicer defines the booking operations needed by API handlers
type BookingServicer interface {
	CreateBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithRoom, error)
	UpdateBooking(ctx context.Context, id string, in models.BookingInput) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// EventStreamer serves server-sent event streams by name
type EventStreamer interface {
	http.Handler
	HasStream(stream string) bool
}
