package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
	"github.com/carbonguardian/carbonguardian/internal/provincial"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pool      *pgxpool.Pool     // nil when running on in-memory stores
	agent     *provincial.Agent // nil when sync is disabled
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, pool *pgxpool.Pool, agent *provincial.Agent) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pool:      pool,
		agent:     agent,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	code := http.StatusOK

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			status = models.HealthStatusFail
			code = http.StatusServiceUnavailable
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, code, health)
}

// Heartbeat handles GET /provincial/heartbeat - the liveness probe the
// provincial platform polls between its own data pulls. Unauthenticated and
// deliberately minimal: it confirms the process is up, nothing more.
func (h *OpsHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	})
}

// SystemStatus handles GET /v1/ops/status - subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	subsystems := make([]models.SubsystemStatus, 0, 2)
	overall := models.HealthStatusOK

	dbStatus := models.HealthStatusOK
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			dbStatus = models.HealthStatusFail
			overall = models.HealthStatusDegraded
		}
	}
	subsystems = append(subsystems, models.SubsystemStatus{Name: "postgres", Status: dbStatus})

	if h.agent != nil {
		syncStatus := models.HealthStatusOK
		switch h.agent.State() {
		case provincial.StateDegraded:
			syncStatus = models.HealthStatusDegraded
			overall = models.HealthStatusDegraded
		case provincial.StateDisconnected, provincial.StateConnecting:
			syncStatus = models.HealthStatusFail
			overall = models.HealthStatusDegraded
		}
		detail := string(h.agent.State())
		subsystems = append(subsystems, models.SubsystemStatus{
			Name:   "provincial-sync",
			Status: syncStatus,
			Detail: &detail,
		})
	}

	status := models.SystemStatus{
		Status:     overall,
		Time:       now,
		Subsystems: subsystems,
	}
	response.JSON(w, r, http.StatusOK, status)
}
