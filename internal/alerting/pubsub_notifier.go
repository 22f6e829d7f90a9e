package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubNotifier publishes system-channel alerts to a Pub/Sub topic for
// downstream consumers (dashboards, SMS/email dispatchers).
type PubSubNotifier struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// PubSubConfig holds configuration for the notifier.
type PubSubConfig struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger
}

// alertEvent is the published message payload.
type alertEvent struct {
	AlertID    string    `json:"alertId"`
	RuleID     string    `json:"ruleId,omitempty"`
	Source     string    `json:"source"`
	BuildingID string    `json:"buildingId,omitempty"`
	Metric     string    `json:"metric,omitempty"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewPubSubNotifier creates a notifier publishing to the given topic.
func NewPubSubNotifier(ctx context.Context, cfg PubSubConfig) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubNotifier{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
		logger:    cfg.Logger,
	}, nil
}

// Notify publishes the alert when its channel set includes the system
// channel. Other channels are handled by downstream subscribers.
func (n *PubSubNotifier) Notify(ctx context.Context, alert *Alert) error {
	if !alert.Channels.System {
		return nil
	}

	payload, err := json.Marshal(alertEvent{
		AlertID:    alert.ID,
		RuleID:     alert.RuleID,
		Source:     string(alert.Source),
		BuildingID: alert.BuildingID,
		Metric:     alert.Metric,
		Value:      alert.Value,
		Threshold:  alert.Threshold,
		Severity:   string(alert.Severity),
		Message:    alert.Message,
		CreatedAt:  alert.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	result := n.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"severity": string(alert.Severity),
			"source":   string(alert.Source),
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	n.logger.Debug().
		Str("alert_id", alert.ID).
		Str("message_id", id).
		Str("topic", n.topic).
		Msg("alert published")
	return nil
}

// Close releases the underlying Pub/Sub client.
func (n *PubSubNotifier) Close() error {
	n.publisher.Stop()
	return n.client.Close()
}

var _ Notifier = (*PubSubNotifier)(nil)
