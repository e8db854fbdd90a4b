package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/skillpath-be/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	ai        bool
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, aiEnabled bool) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, ai: aiEnabled}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
		"ai":     h.ai,
	})
}
