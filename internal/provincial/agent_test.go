package provincial

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonguardian/carbonguardian/internal/alerting"
	"github.com/carbonguardian/carbonguardian/internal/emissions"
)

type fakeUpstream struct {
	mu           sync.Mutex
	heartbeatErr error
	pushErr      error
	batches      []Batch
}

func (f *fakeUpstream) Heartbeat(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heartbeatErr
}

func (f *fakeUpstream) PushBatch(ctx context.Context, batch Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	return f.pushErr
}

func (f *fakeUpstream) setHeartbeatErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeatErr = err
}

func (f *fakeUpstream) setPushErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushErr = err
}

func (f *fakeUpstream) pushed() []Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Batch, len(f.batches))
	copy(out, f.batches)
	return out
}

type fakeAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeAlerter) RaiseOperational(ctx context.Context, severity alerting.Severity, message string) (*alerting.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return &alerting.Alert{ID: "alr_test", Severity: severity, Message: message}, nil
}

func (f *fakeAlerter) raised() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestAgent(up Upstream, alerter OpsAlerter) *Agent {
	return NewAgent(AgentConfig{
		Upstream:       up,
		Alerter:        alerter,
		Logger:         zerolog.Nop(),
		BufferSize:     3,
		ErrorThreshold: 3,
		PushTimeout:    time.Second,
	})
}

func testRecord(id string) emissions.Record {
	return emissions.Record{
		ID:         id,
		BuildingID: "bld_fjxz01",
		DataType:   "electricity",
		Value:      120.5,
		Unit:       "kWh",
		ReportDate: "2026-08-30",
	}
}

func TestAgentHeartbeatStateMachine(t *testing.T) {
	up := &fakeUpstream{}
	agent := newTestAgent(up, nil)
	ctx := context.Background()

	assert.Equal(t, StateDisconnected, agent.State())

	agent.RunHeartbeatOnce(ctx)
	assert.Equal(t, StateConnected, agent.State())

	// Three consecutive misses degrade a connected agent.
	up.setHeartbeatErr(errors.New("upstream unreachable"))
	agent.RunHeartbeatOnce(ctx)
	agent.RunHeartbeatOnce(ctx)
	assert.Equal(t, StateConnected, agent.State())
	agent.RunHeartbeatOnce(ctx)
	assert.Equal(t, StateDegraded, agent.State())

	// A single success recovers.
	up.setHeartbeatErr(nil)
	agent.RunHeartbeatOnce(ctx)
	assert.Equal(t, StateConnected, agent.State())
	assert.False(t, agent.Stats().LastHeartbeatAt.IsZero())
}

func TestAgentDegradedToDisconnected(t *testing.T) {
	up := &fakeUpstream{}
	agent := newTestAgent(up, nil)
	ctx := context.Background()

	agent.RunHeartbeatOnce(ctx)
	require.Equal(t, StateConnected, agent.State())

	up.setHeartbeatErr(errors.New("upstream unreachable"))
	for i := 0; i < 2*missedHeartbeatLimit; i++ {
		agent.RunHeartbeatOnce(ctx)
	}
	assert.Equal(t, StateDisconnected, agent.State())
}

func TestAgentFlushPushesBufferedRecords(t *testing.T) {
	up := &fakeUpstream{}
	agent := newTestAgent(up, nil)

	agent.Enqueue(testRecord("rec_1"))
	agent.Enqueue(testRecord("rec_2"))
	agent.RunFlushOnce(context.Background())

	batches := up.pushed()
	require.Len(t, batches, 1)
	assert.NotEmpty(t, batches[0].CorrelationID)
	assert.Len(t, batches[0].Records, 2)
	assert.Equal(t, 0, agent.Stats().Buffered)
	assert.Equal(t, 1, agent.Stats().SyncsToday)
	assert.Equal(t, 2, agent.Stats().RecordsToday)
}

func TestAgentFlushWithEmptyBufferIsNoop(t *testing.T) {
	up := &fakeUpstream{}
	agent := newTestAgent(up, nil)

	agent.RunFlushOnce(context.Background())
	assert.Empty(t, up.pushed())
}

func TestAgentRetryReusesCorrelationID(t *testing.T) {
	up := &fakeUpstream{}
	agent := newTestAgent(up, nil)
	ctx := context.Background()

	up.setPushErr(errors.New("upstream rejected"))
	agent.Enqueue(testRecord("rec_1"))
	agent.RunFlushOnce(ctx)
	agent.RunFlushOnce(ctx)

	up.setPushErr(nil)
	agent.RunFlushOnce(ctx)

	batches := up.pushed()
	require.Len(t, batches, 3)
	assert.Equal(t, batches[0].CorrelationID, batches[1].CorrelationID)
	assert.Equal(t, batches[0].CorrelationID, batches[2].CorrelationID)
	assert.Equal(t, 0, agent.Stats().PushFailures)
}

func TestAgentRaisesAlertAtErrorThreshold(t *testing.T) {
	up := &fakeUpstream{}
	alerter := &fakeAlerter{}
	agent := newTestAgent(up, alerter)
	ctx := context.Background()

	up.setPushErr(errors.New("upstream rejected"))
	agent.Enqueue(testRecord("rec_1"))

	agent.RunFlushOnce(ctx)
	agent.RunFlushOnce(ctx)
	assert.Equal(t, 0, alerter.raised())

	agent.RunFlushOnce(ctx)
	assert.Equal(t, 1, alerter.raised())

	// Further failures do not re-raise until a success re-arms.
	agent.RunFlushOnce(ctx)
	assert.Equal(t, 1, alerter.raised())

	up.setPushErr(nil)
	agent.RunFlushOnce(ctx)
	assert.Equal(t, 0, agent.Stats().PushFailures)

	up.setPushErr(errors.New("upstream rejected"))
	agent.Enqueue(testRecord("rec_2"))
	agent.RunFlushOnce(ctx)
	agent.RunFlushOnce(ctx)
	agent.RunFlushOnce(ctx)
	assert.Equal(t, 2, alerter.raised())
}

func TestAgentBacklogResignalsFlush(t *testing.T) {
	up := &fakeUpstream{}
	agent := newTestAgent(up, nil)
	ctx := context.Background()

	// Seven records is three batches at BufferSize 3. Every flush that
	// leaves a backlog must queue another flush signal so the run loop
	// drains it without waiting for the next timer tick.
	for i := 0; i < 7; i++ {
		agent.Enqueue(testRecord("rec_x"))
	}

	for batch := 0; batch < 3; batch++ {
		select {
		case <-agent.flushCh:
		default:
			t.Fatalf("no flush signal pending with %d records buffered", agent.Stats().Buffered)
		}
		agent.RunFlushOnce(ctx)
	}

	require.Len(t, up.pushed(), 3)
	assert.Equal(t, 0, agent.Stats().Buffered)
	select {
	case <-agent.flushCh:
		t.Fatal("flush signal pending with empty buffer")
	default:
	}
}

func TestAgentEnqueueCapsBatchSize(t *testing.T) {
	up := &fakeUpstream{}
	agent := newTestAgent(up, nil)

	for i := 0; i < 5; i++ {
		agent.Enqueue(testRecord("rec_x"))
	}
	agent.RunFlushOnce(context.Background())

	batches := up.pushed()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Records, 3)
	assert.Equal(t, 2, agent.Stats().Buffered)
}
