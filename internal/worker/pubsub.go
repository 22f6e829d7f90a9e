package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types accepted on the maintenance subscription.
const (
	jobMaintenance = "maintenance"
	jobLogPrune    = "log_prune"
)

// JobMessage is the wire format of a queued maintenance request.
type JobMessage struct {
	JobType string `json:"job_type"`

	// RetentionOverride, when positive, replaces the configured retention
	// window for this run only. Hours.
	RetentionOverride int `json:"retention_hours,omitempty"`
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	MaintenanceJob   *MaintenanceJob
	Logger           zerolog.Logger
}

// PubSubHandler consumes maintenance job messages. Runs alongside the
// interval-based scheduler so operators can trigger one-off runs by
// publishing a message.
type PubSubHandler struct {
	client       *pubsub.Client
	subscriber   *pubsub.Subscriber
	subscription string
	job          *MaintenanceJob
	logger       zerolog.Logger
}

// NewPubSubHandler connects to the project and prepares the subscriber.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	sub := client.Subscriber(cfg.SubscriptionName)
	sub.ReceiveSettings.MaxOutstandingMessages = 10
	sub.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:       client,
		subscriber:   sub,
		subscription: cfg.SubscriptionName,
		job:          cfg.MaintenanceJob,
		logger:       cfg.Logger,
	}, nil
}

// Start receives until the context is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscription).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, h.handleMessage)
}

// Close releases the underlying client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// handleMessage dispatches one message. Malformed and failed jobs are nacked
// for redelivery; unknown job types are acked so they don't loop forever.
func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	start := time.Now()
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Data, &jobMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch jobMsg.JobType {
	case jobMaintenance:
		err = h.runMaintenance(ctx)
	case jobLogPrune:
		err = h.runLogPrune(ctx, jobMsg)
	default:
		logger.Warn().Str("job_type", jobMsg.JobType).Msg("unknown job type")
		msg.Ack()
		return
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", jobMsg.JobType).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", jobMsg.JobType).
		Dur("duration", time.Since(start)).
		Msg("job completed successfully")
	msg.Ack()
}

func (h *PubSubHandler) runMaintenance(ctx context.Context) error {
	result := h.job.RunOnce(ctx)

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("pruned_entries", result.PrunedEntries).
		Int("overdue_tasks", result.OverdueTasks).
		Msg("maintenance completed")

	if len(result.Errors) > 0 {
		return fmt.Errorf("maintenance run had %d errors: %s", len(result.Errors), result.Errors[0])
	}
	return nil
}

// runLogPrune runs only the log pruning step, optionally with a tighter
// retention window for one-off cleanups.
func (h *PubSubHandler) runLogPrune(ctx context.Context, msg JobMessage) error {
	config := h.job.config
	config.SweepOverdueTasks = false
	if msg.RetentionOverride > 0 {
		config.Retention = time.Duration(msg.RetentionOverride) * time.Hour
	}

	pruner := NewMaintenanceJob(MaintenanceJobConfig{
		Config:       config,
		Logger:       h.logger,
		AuditService: h.job.auditService,
	})

	result := pruner.RunOnce(ctx)
	if len(result.Errors) > 0 {
		return fmt.Errorf("log prune had %d errors: %s", len(result.Errors), result.Errors[0])
	}

	h.logger.Info().Int("pruned_entries", result.PrunedEntries).Msg("log prune completed")
	return nil
}
