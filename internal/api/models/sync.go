package models

import "github.com/carbonguardian/carbonguardian/internal/provincial"

// SyncStatusResponse is the point-in-time state of the provincial sync agent.
type SyncStatusResponse struct {
	State           string     `json:"state"`
	Buffered        int        `json:"buffered"`
	LastHeartbeatAt *Timestamp `json:"lastHeartbeatAt,omitempty"`
	LastSyncAt      *Timestamp `json:"lastSyncAt,omitempty"`
	SyncsToday      int        `json:"syncsToday"`
	RecordsToday    int        `json:"recordsToday"`
	PushFailures    int        `json:"pushFailures"`
}

// NewSyncStatusResponse converts agent stats to their API representation.
func NewSyncStatusResponse(stats provincial.Stats) SyncStatusResponse {
	resp := SyncStatusResponse{
		State:        string(stats.State),
		Buffered:     stats.Buffered,
		SyncsToday:   stats.SyncsToday,
		RecordsToday: stats.RecordsToday,
		PushFailures: stats.PushFailures,
	}
	if !stats.LastHeartbeatAt.IsZero() {
		ts := Timestamp(stats.LastHeartbeatAt)
		resp.LastHeartbeatAt = &ts
	}
	if !stats.LastSyncAt.IsZero() {
		ts := Timestamp(stats.LastSyncAt)
		resp.LastSyncAt = &ts
	}
	return resp
}
