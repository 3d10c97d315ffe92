package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/thablackcodes/gresh-finance/internal/buildinfo"
	"github.com/thablackcodes/gresh-finance/internal/models"
)

const healthTimeout = 2 * time.Second

// Health handles GET /health. It reports 503 when storage is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{Status: "ok", Version: buildinfo.Version}
	status := http.StatusOK

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			h.log.WithError(err).Warn("storage health check failed")
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}
