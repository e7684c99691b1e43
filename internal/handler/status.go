package handler

import (
	"net/http"

	"chatrelay/internal/httputil"
)

// Service identity reported by the status endpoints.
const (
	ServiceName    = "chatrelay"
	ServiceVersion = "1.0.0"
)

// StatusHandler handles liveness and service info requests
type StatusHandler struct {
	provider string
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(provider string) *StatusHandler {
	return &StatusHandler{provider: provider}
}

// Health reports liveness
// GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Status reports service identity and the active provider
// GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "running",
		"service":  ServiceName,
		"version":  ServiceVersion,
		"provider": h.provider,
	})
}
