package provincial

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/carbonguardian/carbonguardian/internal/provincial"

// Metrics carries the instruments for upstream platform calls. Request
// instruments are recorded per attempt, sync instruments per accepted batch.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	syncedBatches   metric.Int64Counter
	syncedRecords   metric.Int64Counter
}

// NewMetrics builds the upstream instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}

	var err error
	if m.requestDuration, err = meter.Float64Histogram(
		"upstream.request.duration",
		metric.WithDescription("Duration of provincial platform requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.requestTotal, err = meter.Int64Counter(
		"upstream.request.total",
		metric.WithDescription("Total number of provincial platform requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.syncedBatches, err = meter.Int64Counter(
		"upstream.sync.batches",
		metric.WithDescription("Number of batches accepted by the provincial platform"),
		metric.WithUnit("{batch}"),
	); err != nil {
		return nil, err
	}
	if m.syncedRecords, err = meter.Int64Counter(
		"upstream.sync.records",
		metric.WithDescription("Number of records accepted by the provincial platform"),
		metric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRequest records one call attempt against the platform. A background
// context is used so a cancelled request still gets counted.
func (m *Metrics) RecordRequest(operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("upstream.operation", operation),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSync records one batch the platform accepted.
func (m *Metrics) RecordSync(records int) {
	ctx := context.Background()
	m.syncedBatches.Add(ctx, 1)
	m.syncedRecords.Add(ctx, int64(records))
}
