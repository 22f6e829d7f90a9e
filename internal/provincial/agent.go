package provincial

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carbonguardian/carbonguardian/internal/alerting"
	"github.com/carbonguardian/carbonguardian/internal/emissions"
)

// State is the connection state of the sync agent.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDegraded     State = "degraded"
)

// missedHeartbeatLimit is the number of consecutive failed heartbeats that
// degrades a connected agent. Twice the limit disconnects it.
const missedHeartbeatLimit = 3

// Upstream abstracts the platform client for testing.
type Upstream interface {
	Heartbeat(ctx context.Context) error
	PushBatch(ctx context.Context, batch Batch) error
}

// OpsAlerter raises operational alerts when the sync error threshold is hit.
// Satisfied by *alerting.Service.
type OpsAlerter interface {
	RaiseOperational(ctx context.Context, severity alerting.Severity, message string) (*alerting.Alert, error)
}

// AgentConfig holds configuration for the sync agent.
type AgentConfig struct {
	Upstream Upstream
	Alerter  OpsAlerter // optional
	Logger   zerolog.Logger

	// HeartbeatInterval is the period between heartbeat probes.
	// Default: 300 seconds.
	HeartbeatInterval time.Duration

	// BufferSize is the record count that triggers an early flush.
	// Default: 50.
	BufferSize int

	// FlushInterval pushes a partial buffer on a timer. Default: 60s.
	FlushInterval time.Duration

	// ErrorThreshold is the consecutive push-failure count that raises an
	// operational alert. Default: 3.
	ErrorThreshold int

	// PushTimeout bounds one push attempt. Default: 10 seconds.
	PushTimeout time.Duration
}

// Stats is a point-in-time snapshot of the agent, served by the sync status
// endpoint.
type Stats struct {
	State           State
	Buffered        int
	LastHeartbeatAt time.Time
	LastSyncAt      time.Time
	SyncsToday      int
	RecordsToday    int
	PushFailures    int // consecutive
}

// Agent drives heartbeat signaling and buffered batch upload to the
// provincial platform. Ingestion enqueues records without blocking; the
// agent reads buffer snapshots and never holds the lock across a network
// round-trip.
type Agent struct {
	cfg    AgentConfig
	logger zerolog.Logger

	mu              sync.Mutex
	state           State
	buffer          []emissions.Record
	pending         *Batch // failed batch awaiting retry, keeps its correlation id
	missedBeats     int
	pushFailures    int
	alertRaised     bool
	lastHeartbeatAt time.Time
	lastSyncAt      time.Time
	statsDay        string
	syncsToday      int
	recordsToday    int

	flushCh chan struct{}
}

// NewAgent creates a sync agent. Run must be called to start its loops.
func NewAgent(cfg AgentConfig) *Agent {
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 300 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 50
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 60 * time.Second
	}
	if cfg.ErrorThreshold == 0 {
		cfg.ErrorThreshold = 3
	}
	if cfg.PushTimeout == 0 {
		cfg.PushTimeout = 10 * time.Second
	}

	return &Agent{
		cfg:     cfg,
		logger:  cfg.Logger,
		state:   StateDisconnected,
		flushCh: make(chan struct{}, 1),
	}
}

// Enqueue buffers an accepted record for upload. Never blocks the caller; a
// full buffer signals the flush loop instead of pushing inline.
func (a *Agent) Enqueue(rec emissions.Record) {
	a.mu.Lock()
	a.buffer = append(a.buffer, rec)
	full := len(a.buffer) >= a.cfg.BufferSize
	a.mu.Unlock()

	if full {
		select {
		case a.flushCh <- struct{}{}:
		default:
		}
	}
}

// Run drives the heartbeat and flush loops until the context is cancelled.
func (a *Agent) Run(ctx context.Context) {
	a.logger.Info().
		Dur("heartbeat_interval", a.cfg.HeartbeatInterval).
		Int("buffer_size", a.cfg.BufferSize).
		Dur("flush_interval", a.cfg.FlushInterval).
		Msg("sync agent starting")

	// Establish the connection immediately rather than waiting a full
	// heartbeat interval.
	a.RunHeartbeatOnce(ctx)

	heartbeat := time.NewTicker(a.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	flush := time.NewTicker(a.cfg.FlushInterval)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final best-effort flush on shutdown.
			flushCtx, cancel := context.WithTimeout(context.Background(), a.cfg.PushTimeout)
			a.RunFlushOnce(flushCtx)
			cancel()
			a.logger.Info().Msg("sync agent stopped")
			return
		case <-heartbeat.C:
			a.RunHeartbeatOnce(ctx)
		case <-flush.C:
			a.RunFlushOnce(ctx)
		case <-a.flushCh:
			a.RunFlushOnce(ctx)
		}
	}
}

// RunHeartbeatOnce performs one heartbeat probe and applies the state
// machine transitions.
func (a *Agent) RunHeartbeatOnce(ctx context.Context) {
	a.mu.Lock()
	if a.state == StateDisconnected {
		a.state = StateConnecting
	}
	a.mu.Unlock()

	hbCtx, cancel := context.WithTimeout(ctx, a.cfg.PushTimeout)
	err := a.cfg.Upstream.Heartbeat(hbCtx)
	cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err == nil {
		prev := a.state
		a.state = StateConnected
		a.missedBeats = 0
		a.lastHeartbeatAt = time.Now()
		if prev != StateConnected {
			a.logger.Info().Str("from", string(prev)).Msg("provincial connection established")
		}
		return
	}

	a.missedBeats++
	prev := a.state
	switch {
	case a.state == StateConnecting:
		a.state = StateDisconnected
	case a.state == StateConnected && a.missedBeats >= missedHeartbeatLimit:
		a.state = StateDegraded
	case a.state == StateDegraded && a.missedBeats >= 2*missedHeartbeatLimit:
		a.state = StateDisconnected
	}

	a.logger.Warn().
		Err(err).
		Int("missed", a.missedBeats).
		Str("state", string(a.state)).
		Msg("heartbeat failed")
	if prev != a.state {
		a.logger.Warn().Str("from", string(prev)).Str("to", string(a.state)).Msg("connection state changed")
	}
}

// RunFlushOnce pushes at most one batch: the pending failed batch if there
// is one, otherwise a snapshot of the buffer.
func (a *Agent) RunFlushOnce(ctx context.Context) {
	batch := a.takeBatch()
	if batch == nil {
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, a.cfg.PushTimeout)
	err := a.cfg.Upstream.PushBatch(pushCtx, *batch)
	cancel()

	a.mu.Lock()
	if err == nil {
		a.pushFailures = 0
		a.alertRaised = false
		a.lastSyncAt = time.Now()
		a.bumpDailyStats(len(batch.Records))
		a.mu.Unlock()

		a.logger.Info().
			Str("correlation_id", batch.CorrelationID).
			Int("records", len(batch.Records)).
			Msg("batch synced")
		return
	}

	// Keep the batch, with its correlation id, for the next attempt.
	a.pending = batch
	a.pushFailures++
	failures := a.pushFailures
	raise := failures >= a.cfg.ErrorThreshold && !a.alertRaised
	if raise {
		a.alertRaised = true
	}
	a.mu.Unlock()

	a.logger.Error().
		Err(err).
		Str("correlation_id", batch.CorrelationID).
		Int("consecutive_failures", failures).
		Msg("batch sync failed")

	if raise && a.cfg.Alerter != nil {
		msg := fmt.Sprintf("provincial sync failing: %d consecutive push failures (last: %v)", failures, err)
		if _, alertErr := a.cfg.Alerter.RaiseOperational(ctx, alerting.SeverityHigh, msg); alertErr != nil {
			a.logger.Error().Err(alertErr).Msg("failed to raise sync alert")
		}
	}
}

// takeBatch returns the batch to push, or nil when there is nothing to do.
// The buffer snapshot is taken under the lock; the push happens outside it.
func (a *Agent) takeBatch() *Batch {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		batch := a.pending
		a.pending = nil
		if len(a.buffer) > 0 {
			select {
			case a.flushCh <- struct{}{}:
			default:
			}
		}
		return batch
	}

	if len(a.buffer) == 0 {
		return nil
	}

	n := len(a.buffer)
	if n > a.cfg.BufferSize {
		n = a.cfg.BufferSize
	}
	records := make([]emissions.Record, n)
	copy(records, a.buffer[:n])
	a.buffer = a.buffer[n:]

	// A backlog deeper than one batch should not wait for the next flush
	// tick; re-signal so the loop drains it on the following iteration.
	if len(a.buffer) > 0 {
		select {
		case a.flushCh <- struct{}{}:
		default:
		}
	}

	return &Batch{
		CorrelationID: uuid.New().String(),
		Records:       records,
	}
}

// bumpDailyStats updates the per-day sync counters. Caller holds the lock.
func (a *Agent) bumpDailyStats(records int) {
	day := time.Now().UTC().Format("2006-01-02")
	if a.statsDay != day {
		a.statsDay = day
		a.syncsToday = 0
		a.recordsToday = 0
	}
	a.syncsToday++
	a.recordsToday += records
}

// State returns the current connection state.
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Stats returns a point-in-time snapshot of the agent.
func (a *Agent) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	buffered := len(a.buffer)
	if a.pending != nil {
		buffered += len(a.pending.Records)
	}
	return Stats{
		State:           a.state,
		Buffered:        buffered,
		LastHeartbeatAt: a.lastHeartbeatAt,
		LastSyncAt:      a.lastSyncAt,
		SyncsToday:      a.syncsToday,
		RecordsToday:    a.recordsToday,
		PushFailures:    a.pushFailures,
	}
}

// Ensure the agent satisfies the ingestion forwarder contract.
var _ emissions.Forwarder = (*Agent)(nil)
