package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notifier dispatches a newly created alert on its configured channels.
type Notifier interface {
	Notify(ctx context.Context, alert *Alert) error
}

// NoopNotifier discards notifications. Used when no channel is configured.
type NoopNotifier struct{}

// Notify implements Notifier.
func (NoopNotifier) Notify(context.Context, *Alert) error { return nil }

// ServiceConfig holds dependencies for the alerting service.
type ServiceConfig struct {
	Rules    RuleRepository
	Alerts   AlertRepository
	Notifier Notifier // optional
	Logger   zerolog.Logger
}

// Service evaluates records against threshold rules and manages the alert
// lifecycle.
type Service struct {
	rules    RuleRepository
	alerts   AlertRepository
	notifier Notifier
	logger   zerolog.Logger
}

// NewService creates a new alerting service.
func NewService(cfg ServiceConfig) *Service {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Service{
		rules:    cfg.Rules,
		alerts:   cfg.Alerts,
		notifier: notifier,
		logger:   cfg.Logger,
	}
}

// EvaluateRecord checks an accepted record against all active rules for its
// building and metric. Each crossed rule creates exactly one alert with the
// rule's severity and channels. Called synchronously from the ingestion path.
func (s *Service) EvaluateRecord(ctx context.Context, buildingID, metric string, value float64, unit string) error {
	rules, err := s.rules.ListActiveFor(ctx, buildingID, metric)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	for _, rule := range rules {
		crossed, err := rule.Operator.Compare(value, rule.Threshold)
		if err != nil {
			s.logger.Error().Err(err).Str("rule_id", rule.ID).Msg("skipping rule with bad operator")
			continue
		}
		if !crossed {
			continue
		}

		alert := &Alert{
			ID:         "alr_" + uuid.New().String()[:22],
			RuleID:     rule.ID,
			Source:     SourceThreshold,
			BuildingID: buildingID,
			Metric:     metric,
			Value:      value,
			Threshold:  rule.Threshold,
			Unit:       unit,
			Severity:   rule.Severity,
			Message:    fmt.Sprintf("%s %s %s %.4g %s (observed %.4g %s)", buildingID, metric, rule.Operator, rule.Threshold, rule.Unit, value, unit),
			Status:     AlertOpen,
			Channels:   rule.Channels,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			return fmt.Errorf("create alert: %w", err)
		}

		s.logger.Warn().
			Str("alert_id", alert.ID).
			Str("rule_id", rule.ID).
			Str("building_id", buildingID).
			Str("metric", metric).
			Float64("value", value).
			Float64("threshold", rule.Threshold).
			Str("severity", string(rule.Severity)).
			Msg("threshold crossed")

		if err := s.notifier.Notify(ctx, alert); err != nil {
			// Notification failure never fails ingestion.
			s.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("alert notification failed")
		}
	}
	return nil
}

// RaiseOperational creates an operational alert outside the rule system,
// used by the sync agent when its error threshold is reached.
func (s *Service) RaiseOperational(ctx context.Context, severity Severity, message string) (*Alert, error) {
	alert := &Alert{
		ID:        "alr_" + uuid.New().String()[:22],
		Source:    SourceSyncAgent,
		Severity:  severity,
		Message:   message,
		Status:    AlertOpen,
		Channels:  Channels{Email: true, System: true},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Error().
		Str("alert_id", alert.ID).
		Str("severity", string(severity)).
		Msg(message)

	if err := s.notifier.Notify(ctx, alert); err != nil {
		s.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("alert notification failed")
	}
	return alert, nil
}

// Transition moves an alert through its lifecycle.
func (s *Service) Transition(ctx context.Context, id string, to AlertStatus) (*Alert, error) {
	alert, err := s.alerts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(alert.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, alert.Status, to)
	}
	alert.Status = to
	alert.UpdatedAt = time.Now()
	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// GetAlert retrieves an alert by ID.
func (s *Service) GetAlert(ctx context.Context, id string) (*Alert, error) {
	return s.alerts.Get(ctx, id)
}

// ListAlerts retrieves alerts matching the filter.
func (s *Service) ListAlerts(ctx context.Context, opts AlertListOptions) ([]*Alert, error) {
	return s.alerts.List(ctx, opts)
}

// CreateRuleInput holds the fields for creating a threshold rule.
type CreateRuleInput struct {
	Category   string
	BuildingID string
	Metric     string
	Operator   Operator
	Threshold  float64
	Unit       string
	Severity   Severity
	Channels   Channels
}

// CreateRule registers a new threshold rule, active by default.
func (s *Service) CreateRule(ctx context.Context, input CreateRuleInput) (*ThresholdRule, error) {
	if _, err := input.Operator.Compare(0, 0); err != nil {
		return nil, err
	}
	now := time.Now()
	rule := &ThresholdRule{
		ID:         "rule_" + uuid.New().String()[:22],
		Category:   input.Category,
		BuildingID: input.BuildingID,
		Metric:     input.Metric,
		Operator:   input.Operator,
		Threshold:  input.Threshold,
		Unit:       input.Unit,
		Severity:   input.Severity,
		Active:     true,
		Channels:   input.Channels,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// SetRuleActive toggles a rule without deleting its configuration.
func (s *Service) SetRuleActive(ctx context.Context, id string, active bool) (*ThresholdRule, error) {
	rule, err := s.rules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.Active = active
	rule.UpdatedAt = time.Now()
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a rule.
func (s *Service) DeleteRule(ctx context.Context, id string) error {
	return s.rules.Delete(ctx, id)
}

// ListRules retrieves all rules.
func (s *Service) ListRules(ctx context.Context) ([]*ThresholdRule, error) {
	return s.rules.List(ctx)
}
