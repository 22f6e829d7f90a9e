package provincial

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonguardian/carbonguardian/internal/emissions"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestMetrics_RecordRequest(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	// Should not panic, with or without an error attribute.
	m.RecordRequest("heartbeat", 10*time.Millisecond, nil)
	m.RecordRequest("sync", time.Second, errors.New("boom"))
}

func TestMetrics_RecordSync(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	// Should not panic
	m.RecordSync(50)
}

func TestClient_PushBatch_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	metrics, err := NewMetrics()
	require.NoError(t, err)

	cfg := fastClientConfig(server.URL)
	cfg.Metrics = metrics
	client := NewClient(cfg)

	batch := Batch{
		CorrelationID: "corr-1",
		Records: []emissions.Record{
			{ID: "rec_1", BuildingID: "bld_fjxz01", DataType: "electricity", Value: 120, Unit: "kWh", Timestamp: time.Now()},
		},
	}
	require.NoError(t, client.PushBatch(context.Background(), batch))
}
