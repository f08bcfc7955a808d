// Package api provides the HTTP handlers for the roombook API
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// readyTimeout bounds the store ping done by the readiness probe
const readyTimeout = 2 * time.Second

// HealthResponse represents the response for health check endpoints
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthLiveHandler handles Kubernetes liveness probe requests
func HealthLiveHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "UP"})
}

// NewHealthReadyHandler answers Kubernetes readiness probes.
// The service is ready once the store answers a ping.
func NewHealthReadyHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "DOWN"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "UP"})
	}
}
