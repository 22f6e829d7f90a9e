package worker

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonguardian/carbonguardian/internal/audit"
	"github.com/carbonguardian/carbonguardian/internal/tasks"
)

func newTestJob(t *testing.T) (*MaintenanceJob, *audit.Service, *tasks.Service) {
	t.Helper()
	logger := zerolog.New(io.Discard)

	auditSvc := audit.NewService(audit.NewInMemoryRepository(), logger)
	taskSvc := tasks.NewService(tasks.NewInMemoryRepository(), logger)

	job := NewMaintenanceJob(MaintenanceJobConfig{
		Config: MaintenanceConfig{
			Retention:         30 * 24 * time.Hour,
			Interval:          time.Hour,
			PruneLogs:         true,
			SweepOverdueTasks: true,
		},
		Logger:       logger,
		AuditService: auditSvc,
		TaskService:  taskSvc,
	})

	return job, auditSvc, taskSvc
}

func TestMaintenanceJob_PrunesExpiredLogEntries(t *testing.T) {
	job, auditSvc, _ := newTestJob(t)
	ctx := context.Background()

	auditSvc.Record(ctx, audit.Entry{
		Timestamp: time.Now().Add(-60 * 24 * time.Hour),
		Direction: audit.DirectionInbound,
		Source:    "old integration",
		Endpoint:  "/v1/data",
	})
	auditSvc.Record(ctx, audit.Entry{
		Timestamp: time.Now().Add(-time.Hour),
		Direction: audit.DirectionInbound,
		Source:    "recent integration",
		Endpoint:  "/v1/data",
	})

	result := job.RunOnce(ctx)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.PrunedEntries)

	remaining, err := auditSvc.Query(ctx, audit.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent integration", remaining[0].Source)
}

func TestMaintenanceJob_SweepsOverdueTasks(t *testing.T) {
	job, _, taskSvc := newTestJob(t)
	ctx := context.Background()

	late, err := taskSvc.Create(ctx, tasks.CreateInput{
		Title:   "排查锅炉房燃气泄漏告警",
		DueDate: time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	onTime, err := taskSvc.Create(ctx, tasks.CreateInput{
		Title:   "季度碳排放报告复核",
		DueDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	result := job.RunOnce(ctx)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.OverdueTasks)

	swept, err := taskSvc.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusOverdue, swept.Status)

	untouched, err := taskSvc.Get(ctx, onTime.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusPending, untouched.Status)
}

func TestMaintenanceJob_NilServicesAreSkipped(t *testing.T) {
	job := NewMaintenanceJob(MaintenanceJobConfig{
		Config: DefaultMaintenanceConfig(),
		Logger: zerolog.New(io.Discard),
	})

	result := job.RunOnce(context.Background())

	assert.Empty(t, result.Errors)
	assert.Zero(t, result.PrunedEntries)
	assert.Zero(t, result.OverdueTasks)
}

func TestMaintenanceJob_Metrics(t *testing.T) {
	job, auditSvc, _ := newTestJob(t)
	ctx := context.Background()

	auditSvc.Record(ctx, audit.Entry{
		Timestamp: time.Now().Add(-60 * 24 * time.Hour),
		Direction: audit.DirectionOutbound,
		Source:    "provincial-platform",
		Endpoint:  "/v1/carbon/data/batch",
	})

	job.RunOnce(ctx)
	job.RunOnce(ctx)

	m := job.GetMetrics()
	assert.Equal(t, int64(2), m.TotalRuns)
	assert.Equal(t, int64(0), m.FailedRuns)
	assert.Equal(t, int64(1), m.PrunedEntries)
	assert.False(t, m.LastRunAt.IsZero())

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(2), snapshot["total_runs"])
}

func TestDefaultMaintenanceConfig(t *testing.T) {
	cfg := DefaultMaintenanceConfig()

	assert.Equal(t, 90*24*time.Hour, cfg.Retention)
	assert.Equal(t, time.Hour, cfg.Interval)
	assert.True(t, cfg.PruneLogs)
	assert.True(t, cfg.SweepOverdueTasks)
}
