// Package alerting implements threshold rules, alert generation and alert
// lifecycle management. Emissions alerts come from rule evaluation against
// accepted records; operational alerts come from the sync agent.
package alerting

import (
	"errors"
	"fmt"
	"time"
)

// Alerting errors.
var (
	ErrRuleNotFound      = errors.New("threshold rule not found")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrInvalidTransition = errors.New("invalid alert status transition")
	ErrInvalidOperator   = errors.New("unknown comparison operator")
)

// Severity classifies alerts and rules.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Operator is a threshold comparison operator.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "="
)

// Compare applies the operator to (value, threshold).
func (op Operator) Compare(value, threshold float64) (bool, error) {
	switch op {
	case OpGreater:
		return value > threshold, nil
	case OpGreaterEqual:
		return value >= threshold, nil
	case OpLess:
		return value < threshold, nil
	case OpLessEqual:
		return value <= threshold, nil
	case OpEqual:
		return value == threshold, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidOperator, op)
	}
}

// Channels selects the notification channels of a rule.
type Channels struct {
	SMS    bool
	Email  bool
	System bool
}

// ThresholdRule is a user-configured alert condition.
type ThresholdRule struct {
	ID         string
	Category   string
	BuildingID string // building code; empty matches all buildings
	Metric     string // data type, e.g. "electricity"
	Operator   Operator
	Threshold  float64
	Unit       string
	Severity   Severity
	Active     bool
	Channels   Channels
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Matches reports whether the rule applies to a record's building and metric.
func (r *ThresholdRule) Matches(buildingID, metric string) bool {
	if !r.Active {
		return false
	}
	if r.Metric != metric {
		return false
	}
	return r.BuildingID == "" || r.BuildingID == buildingID
}

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	AlertOpen       AlertStatus = "open"
	AlertInProgress AlertStatus = "in_progress"
	AlertResolved   AlertStatus = "resolved"
	AlertDismissed  AlertStatus = "dismissed"
)

// alertTransitions defines the legal lifecycle moves.
var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertOpen:       {AlertInProgress, AlertResolved, AlertDismissed},
	AlertInProgress: {AlertResolved, AlertDismissed},
}

// CanTransition reports whether an alert may move from one status to another.
func CanTransition(from, to AlertStatus) bool {
	for _, next := range alertTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AlertSource distinguishes emissions alerts from operational ones.
type AlertSource string

const (
	SourceThreshold AlertSource = "threshold"
	SourceSyncAgent AlertSource = "sync_agent"
)

// Alert is a generated alert instance.
type Alert struct {
	ID         string
	RuleID     string // empty for operational alerts
	Source     AlertSource
	BuildingID string
	Metric     string
	Value      float64
	Threshold  float64
	Unit       string
	Severity   Severity
	Message    string
	Status     AlertStatus
	Channels   Channels
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
