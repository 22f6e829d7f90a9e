package handler

import (
	"net/http"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
	"github.com/carbonguardian/carbonguardian/internal/provincial"
)

// SyncHandler exposes the provincial sync agent's state.
type SyncHandler struct {
	agent *provincial.Agent
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(agent *provincial.Agent) *SyncHandler {
	return &SyncHandler{agent: agent}
}

// Status handles GET /v1/sync/status - connection state, buffer depth and
// today's sync counters.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.NewSyncStatusResponse(h.agent.Stats()))
}

// Flush handles POST /v1/sync/flush - push buffered records now instead of
// waiting for the next flush interval. Operator-only.
func (h *SyncHandler) Flush(w http.ResponseWriter, r *http.Request) {
	h.agent.RunFlushOnce(r.Context())
	response.JSON(w, r, http.StatusOK, models.NewSyncStatusResponse(h.agent.Stats()))
}
