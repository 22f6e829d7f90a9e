package models

// Health is the liveness/readiness response body, shared by /v1/ops/health,
// /v1/ops/ready and the provincial heartbeat endpoint.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus aggregates subsystem health for /v1/ops/status. Any degraded
// subsystem degrades the whole; any failed subsystem fails it.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
}

// SubsystemStatus reports one dependency: database, provincial link, notifier.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}
