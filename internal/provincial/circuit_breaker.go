// Package provincial implements the sync agent and HTTP client for the
// provincial carbon-monitoring platform: heartbeat signaling, buffered batch
// upload with correlation IDs, and connection-health tracking.
package provincial

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig tunes the breaker guarding upstream calls. Zero values
// take the gobreaker defaults except where DefaultCircuitBreakerConfig sets
// them explicitly.
type CircuitBreakerConfig struct {
	// Name labels the breaker in state-change logs.
	Name string

	// MaxRequests caps probes allowed through while half-open.
	MaxRequests uint32

	// Interval is the closed-state counter reset period. Zero disables
	// the reset.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// ReadyToTrip decides when accumulated failures open the breaker.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange observes breaker transitions. Optional.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig is the production tuning: single half-open
// probe, 60 second open period, trip on a 50% failure rate.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: DefaultReadyToTrip,
	}
}

// DefaultReadyToTrip opens the breaker once at least 5 requests have been
// seen and half or more of them failed.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < 5 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
}

func newCircuitBreaker[T any](cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
	})
}
