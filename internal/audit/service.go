package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service records and queries integration log entries. Record follows a
// write-then-respond discipline: the entry is durably written before the
// originating request is considered complete.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record assigns an ID and appends the entry. A failed append is logged but
// does not fail the caller: the caller's own response has already been
// produced by the time middleware records it.
func (s *Service) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = "log_" + uuid.New().String()[:22]
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if err := s.repo.Append(ctx, &e); err != nil {
		s.logger.Error().
			Err(err).
			Str("source", e.Source).
			Str("endpoint", e.Endpoint).
			Msg("audit append failed")
	}
}

// Query retrieves entries matching the filter.
func (s *Service) Query(ctx context.Context, opts QueryOptions) ([]*Entry, error) {
	return s.repo.Query(ctx, opts)
}

// Prune deletes entries older than the retention window. Reserved for the
// maintenance job; no request handler deletes log entries.
func (s *Service) Prune(ctx context.Context, retention time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-retention)
	pruned, err := s.repo.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		s.logger.Info().
			Int("pruned", pruned).
			Time("cutoff", cutoff).
			Msg("integration log pruned")
	}
	return pruned, nil
}
