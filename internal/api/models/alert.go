package models

import "github.com/carbonguardian/carbonguardian/internal/alerting"

// ChannelsRequest selects the notification channels of a rule.
type ChannelsRequest struct {
	SMS    bool `json:"sms"`
	Email  bool `json:"email"`
	System bool `json:"system"`
}

// CreateRuleRequest is the body of a threshold rule creation.
type CreateRuleRequest struct {
	Category   string          `json:"category" validate:"max=100"`
	BuildingID string          `json:"buildingId,omitempty"`
	Metric     string          `json:"metric" validate:"required"`
	Operator   string          `json:"operator" validate:"required,oneof=> >= < <= ="`
	Threshold  float64         `json:"threshold"`
	Unit       string          `json:"unit" validate:"required"`
	Severity   string          `json:"severity" validate:"required,oneof=high medium low"`
	Channels   ChannelsRequest `json:"channels"`
}

// UpdateRuleActiveRequest toggles a rule on or off.
type UpdateRuleActiveRequest struct {
	Active bool `json:"active"`
}

// RuleResponse is the representation of a threshold rule.
type RuleResponse struct {
	ID         string          `json:"id"`
	Category   string          `json:"category,omitempty"`
	BuildingID string          `json:"buildingId,omitempty"`
	Metric     string          `json:"metric"`
	Operator   string          `json:"operator"`
	Threshold  float64         `json:"threshold"`
	Unit       string          `json:"unit"`
	Severity   string          `json:"severity"`
	Active     bool            `json:"active"`
	Channels   ChannelsRequest `json:"channels"`
	CreatedAt  Timestamp       `json:"createdAt"`
	UpdatedAt  Timestamp       `json:"updatedAt"`
}

// RuleListResponse is a listing of threshold rules.
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// AlertTransitionRequest moves an alert through its lifecycle.
type AlertTransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress resolved dismissed"`
}

// AlertResponse is the representation of an alert.
type AlertResponse struct {
	ID         string    `json:"id"`
	RuleID     string    `json:"ruleId,omitempty"`
	Source     string    `json:"source"`
	BuildingID string    `json:"buildingId,omitempty"`
	Metric     string    `json:"metric,omitempty"`
	Value      float64   `json:"value,omitempty"`
	Threshold  float64   `json:"threshold,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
}

// AlertListResponse is a listing of alerts.
type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

// NewRuleResponse converts a domain rule to its API representation.
func NewRuleResponse(r *alerting.ThresholdRule) RuleResponse {
	return RuleResponse{
		ID:         r.ID,
		Category:   r.Category,
		BuildingID: r.BuildingID,
		Metric:     r.Metric,
		Operator:   string(r.Operator),
		Threshold:  r.Threshold,
		Unit:       r.Unit,
		Severity:   string(r.Severity),
		Active:     r.Active,
		Channels:   ChannelsRequest{SMS: r.Channels.SMS, Email: r.Channels.Email, System: r.Channels.System},
		CreatedAt:  Timestamp(r.CreatedAt),
		UpdatedAt:  Timestamp(r.UpdatedAt),
	}
}

// NewAlertResponse converts a domain alert to its API representation.
func NewAlertResponse(a *alerting.Alert) AlertResponse {
	return AlertResponse{
		ID:         a.ID,
		RuleID:     a.RuleID,
		Source:     string(a.Source),
		BuildingID: a.BuildingID,
		Metric:     a.Metric,
		Value:      a.Value,
		Threshold:  a.Threshold,
		Unit:       a.Unit,
		Severity:   string(a.Severity),
		Message:    a.Message,
		Status:     string(a.Status),
		CreatedAt:  Timestamp(a.CreatedAt),
		UpdatedAt:  Timestamp(a.UpdatedAt),
	}
}
