package alerting

import "context"

// RuleRepository defines the interface for threshold rule persistence.
type RuleRepository interface {
	// Get retrieves a rule by ID.
	Get(ctx context.Context, id string) (*ThresholdRule, error)

	// List retrieves all rules.
	List(ctx context.Context) ([]*ThresholdRule, error)

	// ListActiveFor retrieves active rules matching a building and metric.
	ListActiveFor(ctx context.Context, buildingID, metric string) ([]*ThresholdRule, error)

	// Create persists a new rule.
	Create(ctx context.Context, r *ThresholdRule) error

	// Update replaces an existing rule.
	Update(ctx context.Context, r *ThresholdRule) error

	// Delete removes a rule.
	Delete(ctx context.Context, id string) error
}

// AlertListOptions filters alert listings.
type AlertListOptions struct {
	Status     AlertStatus
	Severity   Severity
	BuildingID string
	Source     AlertSource
	Limit      int
}

// AlertRepository defines the interface for alert persistence.
type AlertRepository interface {
	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*Alert, error)

	// List retrieves alerts matching the filter, newest first.
	List(ctx context.Context, opts AlertListOptions) ([]*Alert, error)

	// Create persists a new alert.
	Create(ctx context.Context, a *Alert) error

	// Update replaces an existing alert.
	Update(ctx context.Context, a *Alert) error
}
