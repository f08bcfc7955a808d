package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/navikt/roombook/internal/models"
)

// RoomHandler handles HTTP requests for room management
type RoomHandler struct {
	rooms RoomServicer
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms RoomServicer) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Routes mounts the room endpoints
func (h *RoomHandler) Routes(r chi.Router) {
	r.Post("/", h.createRoom)
	r.Get("/", h.listRooms)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.getRoom)
		r.Put("/", h.updateRoom)
		r.Delete("/", h.deleteRoom)
	})
}

// POST /api/rooms
func (h *RoomHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	var in models.RoomInput
	if err := decodeBody(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// GET /api/rooms
func (h *RoomHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// GET /api/rooms/{id}
func (h *RoomHandler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// PUT /api/rooms/{id}
func (h *RoomHandler) updateRoom(w http.ResponseWriter, r *http.Request) {
	var in models.RoomInput
	if err := decodeBody(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	room, err := h.rooms.UpdateRoom(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// DELETE /api/rooms/{id}
func (h *RoomHandler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.DeleteRoom(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgRoomDeleted})
}
