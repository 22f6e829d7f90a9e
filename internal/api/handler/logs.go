package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
	"github.com/carbonguardian/carbonguardian/internal/audit"
)

// LogsHandler handles integration log query endpoints. The log is
// append-only: there is no write surface here, entries are created by the
// audit middleware and the sync client, and pruned only by the retention
// job.
type LogsHandler struct {
	svc *audit.Service
}

// NewLogsHandler creates a new LogsHandler.
func NewLogsHandler(svc *audit.Service) *LogsHandler {
	return &LogsHandler{svc: svc}
}

// Query handles GET /v1/logs - list entries newest first with filters.
func (h *LogsHandler) Query(w http.ResponseWriter, r *http.Request) {
	opts := audit.QueryOptions{
		Source:    r.URL.Query().Get("source"),
		Status:    audit.Status(r.URL.Query().Get("status")),
		Direction: audit.Direction(r.URL.Query().Get("direction")),
		Limit:     100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 1000", nil)
			return
		}
		opts.Limit = limit
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "from must be an RFC3339 timestamp", nil)
			return
		}
		opts.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "to must be an RFC3339 timestamp", nil)
			return
		}
		opts.To = to
	}

	entries, err := h.svc.Query(r.Context(), opts)
	if err != nil {
		response.InternalError(w, r, "failed to query logs")
		return
	}

	resp := models.LogListResponse{Logs: make([]models.LogEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Logs = append(resp.Logs, models.NewLogEntryResponse(e))
	}
	response.JSON(w, r, http.StatusOK, resp)
}
