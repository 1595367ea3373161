package handlers

import (
	"net/http"
	"time"

	"github.com/evidentry/evidentry/internal/server/response"
)

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":   "healthy",
		"service":  "evidentry-api",
		"version":  "v1",
		"uptime_s": int(time.Since(h.startTime).Seconds()),
		"facts":    len(h.store.Facts()),
		"findings": len(h.ledger.Findings()),
	})
}
