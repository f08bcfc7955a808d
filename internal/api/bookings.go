package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/navikt/roombook/internal/models"
)

// BookingHandler handles HTTP requests for bookings
type BookingHandler struct {
	bookings BookingServicer
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings BookingServicer) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Routes mounts the booking endpoints
func (h *BookingHandler) Routes(r chi.Router) {
	r.Post("/", h.createBooking)
	r.Get("/", h.listBookings)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.getBooking)
		r.Put("/", h.updateBooking)
		r.Delete("/", h.deleteBooking)
	})
}

// POST /api/bookings
func (h *BookingHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	var in models.BookingInput
	if err := decodeBody(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// GET /api/bookings?roomId=&date=
func (h *BookingHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.BookingFilter{
		RoomID: query.Get("roomId"),
		Date:   query.Get("date"),
	}

	bookings, err := h.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// GET /api/bookings/{id}
func (h *BookingHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// PUT /api/bookings/{id}
func (h *BookingHandler) updateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.BookingInput
	if err := decodeBody(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	booking, err := h.bookings.UpdateBooking(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// DELETE /api/bookings/{id}
func (h *BookingHandler) deleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.bookings.DeleteBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgBookingDeleted})
}
