package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// requestTimeout bounds every API call except the event stream
const requestTimeout = 30 * time.Second

// Deps holds what the router needs to serve requests
type Deps struct {
	Rooms          RoomServicer
	Bookings       BookingServicer
	Store          Pinger
	Events         EventStreamer // optional
	AllowedOrigins []string
}

// NewRouter configures the HTTP routes for the API
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("API is running..."))
	})

	// Health check endpoints for Kubernetes
	r.Get("/health/live", HealthLiveHandler)
	r.Get("/health/ready", NewHealthReadyHandler(d.Store))

	r.Route("/api", func(r chi.Router) {
		if d.Events != nil {
			r.With(StreamHeaders).Get("/events", eventsHandler(d.Events))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Route("/rooms", NewRoomHandler(d.Rooms).Routes)
			r.Route("/bookings", NewBookingHandler(d.Bookings).Routes)
		})
	})

	return r
}

// GET /api/events?stream=bookings|rooms
func eventsHandler(events EventStreamer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !events.HasStream(r.URL.Query().Get("stream")) {
			writeError(w, http.StatusNotFound, "Unknown event stream", "")
			return
		}
		events.ServeHTTP(w, r)
	}
}
