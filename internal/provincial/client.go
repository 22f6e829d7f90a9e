package provincial

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/carbonguardian/carbonguardian/internal/audit"
	"github.com/carbonguardian/carbonguardian/internal/emissions"
)

// Upstream call errors.
var (
	// ErrUpstreamTimeout is returned when a call exceeds its deadline.
	ErrUpstreamTimeout = errors.New("provincial platform timed out")

	// ErrUpstreamRejected is returned when the platform answers with an
	// error status.
	ErrUpstreamRejected = errors.New("provincial platform rejected the request")

	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("provincial circuit breaker is open")
)

// errServerStatus marks a 5xx response inside the breaker so it counts as a
// failure toward tripping.
var errServerStatus = errors.New("provincial platform server error")

// Batch is one correlated upload unit. The correlation ID is stable across
// retries so the platform can deduplicate a re-pushed batch.
type Batch struct {
	CorrelationID string
	Records       []emissions.Record
}

// ClientConfig holds configuration for the provincial platform client.
type ClientConfig struct {
	// BaseURL is the platform API root, without trailing slash.
	BaseURL string

	// APIKey authenticates this system to the platform.
	APIKey string

	// ProvincialToken is the extra X-Provincial-Token credential required
	// on sync pushes.
	ProvincialToken string

	// Timeout bounds a single round-trip. Default: 10 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts per call. Default: 3.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval. Default: 500ms.
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval. Default: 10s.
	MaxInterval time.Duration

	// CircuitBreaker overrides the default breaker configuration.
	CircuitBreaker *CircuitBreakerConfig

	// Audit records every outbound call. Optional.
	Audit *audit.Service

	// Metrics records upstream call instruments. Optional.
	Metrics *Metrics
}

// Client is the HTTP client for the provincial platform, with circuit
// breaker protection and bounded exponential retry.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         ClientConfig
	auditor        *audit.Service
	metrics        *Metrics
}

// NewClient creates a new provincial platform client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	cbCfg := DefaultCircuitBreakerConfig("provincial")
	if cfg.CircuitBreaker != nil {
		cbCfg = *cfg.CircuitBreaker
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: newCircuitBreaker[*http.Response](cbCfg),
		config:         cfg,
		auditor:        cfg.Audit,
		metrics:        cfg.Metrics,
	}
}

// Heartbeat sends a liveness probe to the platform.
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/heartbeat", nil, "heartbeat")
}

// syncPayload is the wire format of a batch push.
type syncPayload struct {
	CorrelationID string       `json:"correlationId"`
	Items         []syncRecord `json:"items"`
}

type syncRecord struct {
	RecordID   string    `json:"recordId"`
	BuildingID string    `json:"buildingId"`
	DataType   string    `json:"dataType"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Timestamp  time.Time `json:"timestamp"`
}

// PushBatch uploads one correlated batch of records.
func (c *Client) PushBatch(ctx context.Context, batch Batch) error {
	payload := syncPayload{
		CorrelationID: batch.CorrelationID,
		Items:         make([]syncRecord, 0, len(batch.Records)),
	}
	for _, rec := range batch.Records {
		payload.Items = append(payload.Items, syncRecord{
			RecordID:   rec.ID,
			BuildingID: rec.BuildingID,
			DataType:   rec.DataType,
			Value:      rec.Value,
			Unit:       rec.Unit,
			Timestamp:  rec.Timestamp,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sync payload: %w", err)
	}
	if err := c.call(ctx, http.MethodPost, "/data/sync", body, "sync"); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordSync(len(batch.Records))
	}
	return nil
}

// call executes one platform call through the circuit breaker with retry.
// Timeouts and 5xx responses are retried; 4xx responses are permanent.
func (c *Client) call(ctx context.Context, method, path string, body []byte, op string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var callErr error
	operation := func() error {
		start := time.Now()
		statusCode := 0

		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
			if c.config.ProvincialToken != "" {
				req.Header.Set("X-Provincial-Token", c.config.ProvincialToken)
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode >= 500 {
				return resp, errServerStatus
			}
			return resp, nil
		})

		if resp != nil {
			statusCode = resp.StatusCode
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			callErr = ErrCircuitOpen
			c.record(ctx, method, path, op, statusCode, start, callErr)
			return backoff.Permanent(callErr)
		case errors.Is(err, errServerStatus):
			callErr = fmt.Errorf("%w: status %d", ErrUpstreamRejected, statusCode)
			c.record(ctx, method, path, op, statusCode, start, callErr)
			return callErr
		case err != nil:
			callErr = classifyTransportError(err)
			c.record(ctx, method, path, op, statusCode, start, callErr)
			return callErr
		case statusCode >= 400:
			callErr = fmt.Errorf("%w: status %d", ErrUpstreamRejected, statusCode)
			c.record(ctx, method, path, op, statusCode, start, callErr)
			return backoff.Permanent(callErr)
		}

		callErr = nil
		c.record(ctx, method, path, op, statusCode, start, nil)
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if callErr != nil {
			return callErr
		}
		return err
	}
	return nil
}

// classifyTransportError maps transport failures onto the error taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrUpstreamTimeout
	}
	return fmt.Errorf("%w: %v", ErrUpstreamRejected, err)
}

// record appends an outbound audit entry and metric observation for one
// attempt.
func (c *Client) record(ctx context.Context, method, path, op string, statusCode int, start time.Time, callErr error) {
	if c.metrics != nil {
		c.metrics.RecordRequest(op, time.Since(start), callErr)
	}
	if c.auditor == nil {
		return
	}

	status := audit.StatusForCode(statusCode)
	message := op + " ok"
	if callErr != nil {
		status = audit.StatusError
		message = callErr.Error()
	}

	c.auditor.Record(ctx, audit.Entry{
		Direction:      audit.DirectionOutbound,
		Source:         "provincial_platform",
		RequestType:    method,
		Endpoint:       path,
		Status:         status,
		StatusCode:     statusCode,
		ResponseTimeMS: time.Since(start).Milliseconds(),
		Message:        message,
	})
}

// State returns the current circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.circuitBreaker.State()
}
