// Package worker provides background maintenance jobs for Carbon Guardian.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonguardian/carbonguardian/internal/audit"
	"github.com/carbonguardian/carbonguardian/internal/tasks"
)

// MaintenanceConfig holds configuration for the maintenance job.
type MaintenanceConfig struct {
	// Retention is how long integration log entries are kept. Entries
	// older than the window are pruned on each run.
	// Default: 90 days
	Retention time.Duration

	// Interval is the period between maintenance runs when the job is
	// driven by its own loop rather than by Pub/Sub messages.
	// Default: 1 hour
	Interval time.Duration

	// PruneLogs enables integration log pruning.
	// Default: true
	PruneLogs bool

	// SweepOverdueTasks enables marking tasks past their due date.
	// Default: true
	SweepOverdueTasks bool
}

// DefaultMaintenanceConfig returns the default maintenance configuration.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		Retention:         90 * 24 * time.Hour,
		Interval:          time.Hour,
		PruneLogs:         true,
		SweepOverdueTasks: true,
	}
}

// MaintenanceJobConfig holds dependencies for creating a MaintenanceJob.
type MaintenanceJobConfig struct {
	Config MaintenanceConfig
	Logger zerolog.Logger

	// Services (optional, nil skips the corresponding step)
	AuditService *audit.Service
	TaskService  *tasks.Service
}

// MaintenanceJob runs the periodic housekeeping steps: pruning the
// integration log past its retention window and sweeping tasks past their
// due date into the overdue status.
type MaintenanceJob struct {
	config MaintenanceConfig
	logger zerolog.Logger

	auditService *audit.Service
	taskService  *tasks.Service

	metrics *MaintenanceMetrics
}

// MaintenanceMetrics tracks maintenance job statistics.
type MaintenanceMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns     int64
	FailedRuns    int64
	PrunedEntries int64
	OverdueTasks  int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// NewMaintenanceJob creates a new maintenance job processor.
func NewMaintenanceJob(cfg MaintenanceJobConfig) *MaintenanceJob {
	config := cfg.Config
	if config.Retention <= 0 {
		config = DefaultMaintenanceConfig()
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}

	return &MaintenanceJob{
		config:       config,
		logger:       cfg.Logger,
		auditService: cfg.AuditService,
		taskService:  cfg.TaskService,
		metrics:      &MaintenanceMetrics{},
	}
}

// MaintenanceResult contains the result of one maintenance run.
type MaintenanceResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	PrunedEntries int
	OverdueTasks  int
	Errors        []string
}

// RunOnce executes a single maintenance pass.
func (j *MaintenanceJob) RunOnce(ctx context.Context) *MaintenanceResult {
	startTime := time.Now()
	result := &MaintenanceResult{StartTime: startTime}

	j.logger.Info().
		Dur("retention", j.config.Retention).
		Msg("starting maintenance run")

	if j.config.PruneLogs && j.auditService != nil {
		pruned, err := j.auditService.Prune(ctx, j.config.Retention, startTime)
		if err != nil {
			j.logger.Error().Err(err).Msg("integration log prune failed")
			result.Errors = append(result.Errors, "prune: "+err.Error())
		} else {
			result.PrunedEntries = pruned
		}
	}

	if j.config.SweepOverdueTasks && j.taskService != nil {
		overdue, err := j.taskService.MarkOverdue(ctx, startTime)
		if err != nil {
			j.logger.Error().Err(err).Msg("overdue task sweep failed")
			result.Errors = append(result.Errors, "sweep: "+err.Error())
		} else {
			result.OverdueTasks = overdue
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("pruned_entries", result.PrunedEntries).
		Int("overdue_tasks", result.OverdueTasks).
		Int("errors", len(result.Errors)).
		Msg("maintenance run completed")

	return result
}

// Run executes maintenance passes on the configured interval until the
// context is cancelled. The first pass runs immediately.
func (j *MaintenanceJob) Run(ctx context.Context) {
	j.RunOnce(ctx)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *MaintenanceJob) updateMetrics(result *MaintenanceResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	if len(result.Errors) > 0 {
		j.metrics.FailedRuns++
	}
	j.metrics.PrunedEntries += int64(result.PrunedEntries)
	j.metrics.OverdueTasks += int64(result.OverdueTasks)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *MaintenanceJob) GetMetrics() MaintenanceMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return MaintenanceMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		FailedRuns:      j.metrics.FailedRuns,
		PrunedEntries:   j.metrics.PrunedEntries,
		OverdueTasks:    j.metrics.OverdueTasks,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *MaintenanceJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"failed_runs":       m.FailedRuns,
		"pruned_entries":    m.PrunedEntries,
		"overdue_tasks":     m.OverdueTasks,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
