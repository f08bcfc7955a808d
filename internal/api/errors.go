package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/navikt/roombook/internal/models"
)

// Messages returned to clients
const (
	msgServerError     = "Server error"
	msgInvalidBody     = "Invalid request body"
	msgRoomNotFound    = "Room not found"
	msgBookingNotFound = "Booking not found"
	msgRoomDeleted     = "Room deleted"
	msgBookingDeleted  = "Booking deleted"
)

// ErrorResponse is the body of every non-2xx answer.
// Code is set for booking rejections.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse is the body of delete answers
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, code models.Reason) {
	writeJSON(w, status, ErrorResponse{Message: message, Code: string(code)})
}

// writeServiceError maps an error from the service layer to a status code and body
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if rej, ok := models.AsRejection(err); ok {
		status := http.StatusBadRequest
		if rej.Reason == models.ReasonRoomNotFound {
			status = http.StatusNotFound
		}
		writeError(w, status, rej.Message, rej.Reason)
		return
	}

	var inputErr *models.InputError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Message, "")
	case errors.Is(err, models.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, msgBookingNotFound, "")
	case errors.Is(err, models.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, msgRoomNotFound, "")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, msgServerError, "")
	}
}
