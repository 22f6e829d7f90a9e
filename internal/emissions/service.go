package emissions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carbonguardian/carbonguardian/internal/registry"
)

// Evaluator receives each accepted record for threshold evaluation.
// Implemented by the alerting package.
type Evaluator interface {
	EvaluateRecord(ctx context.Context, buildingID, dataType string, value float64, unit string) error
}

// Forwarder receives each accepted record for upstream sync buffering.
// Implemented by the provincial sync agent. Enqueue must not block.
type Forwarder interface {
	Enqueue(rec Record)
}

// Submission is one incoming data point before validation.
type Submission struct {
	BuildingID string
	DataType   string
	Value      float64
	Unit       string
	Timestamp  time.Time
	Notes      string
}

// SubmissionError wraps a validation failure with the index of the failing
// item, so batch rejections can point at the first bad record.
type SubmissionError struct {
	Index int
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ServiceConfig holds dependencies for the ingestion service.
type ServiceConfig struct {
	Repository Repository
	Registry   *registry.Service
	Evaluator  Evaluator // optional
	Forwarder  Forwarder // optional
	Logger     zerolog.Logger
}

// Service implements the ingestion gateway contract.
type Service struct {
	repo      Repository
	registry  *registry.Service
	evaluator Evaluator
	forwarder Forwarder
	logger    zerolog.Logger
}

// NewService creates a new ingestion service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repository,
		registry:  cfg.Registry,
		evaluator: cfg.Evaluator,
		forwarder: cfg.Forwarder,
		logger:    cfg.Logger,
	}
}

// Submit validates and persists a single record, then triggers threshold
// evaluation and sync buffering.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Record, error) {
	rec, err := s.validate(ctx, sub)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.dispatch(ctx, rec)
	return rec, nil
}

// SubmitBatch validates and persists up to MaxBatchSize records atomically.
// If any item fails validation the whole batch is rejected and nothing is
// persisted; the returned error identifies the first failing item.
func (s *Service) SubmitBatch(ctx context.Context, subs []Submission) ([]*Record, error) {
	if len(subs) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	records := make([]*Record, 0, len(subs))
	seen := make(map[Key]struct{}, len(subs))
	for i, sub := range subs {
		rec, err := s.validate(ctx, sub)
		if err != nil {
			return nil, &SubmissionError{Index: i, Err: err}
		}
		key := KeyOf(rec)
		if _, dup := seen[key]; dup {
			return nil, &SubmissionError{Index: i, Err: ErrDuplicateRecord}
		}
		seen[key] = struct{}{}
		records = append(records, rec)
	}

	if err := s.repo.CreateBatch(ctx, records); err != nil {
		// The repository re-checks uniqueness inside the transaction, so
		// a concurrent submitter can still surface a duplicate here.
		return nil, err
	}

	for _, rec := range records {
		s.dispatch(ctx, rec)
	}
	return records, nil
}

// Get retrieves an accepted record by ID.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves accepted records matching the filter.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	return s.repo.List(ctx, opts)
}

// validate runs the gateway validation pipeline for one submission and
// returns the record ready for persistence.
func (s *Service) validate(ctx context.Context, sub Submission) (*Record, error) {
	if _, err := s.registry.ResolveBuilding(ctx, sub.BuildingID); err != nil {
		if errors.Is(err, registry.ErrBuildingNotFound) {
			return nil, ErrUnknownBuilding
		}
		return nil, err
	}

	param, err := s.registry.ResolveParameter(ctx, sub.DataType)
	if err != nil {
		if errors.Is(err, registry.ErrParameterNotFound) {
			return nil, ErrInvalidUnit
		}
		return nil, err
	}
	if !param.AllowsUnit(sub.Unit) {
		return nil, ErrInvalidUnit
	}

	if math.IsNaN(sub.Value) || math.IsInf(sub.Value, 0) {
		return nil, ErrInvalidValue
	}

	rec := &Record{
		ID:         "rec_" + uuid.New().String()[:22],
		BuildingID: sub.BuildingID,
		DataType:   sub.DataType,
		Value:      sub.Value,
		Unit:       sub.Unit,
		Timestamp:  sub.Timestamp,
		ReportDate: ReportDateOf(sub.Timestamp),
		Notes:      sub.Notes,
		CreatedAt:  time.Now(),
	}

	exists, err := s.repo.Exists(ctx, KeyOf(rec))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRecord
	}

	return rec, nil
}

// dispatch triggers post-acceptance side effects: synchronous threshold
// evaluation and non-blocking sync buffering. Evaluation failures are logged
// and never surfaced to the submitter.
func (s *Service) dispatch(ctx context.Context, rec *Record) {
	if s.evaluator != nil {
		if err := s.evaluator.EvaluateRecord(ctx, rec.BuildingID, rec.DataType, rec.Value, rec.Unit); err != nil {
			s.logger.Error().
				Err(err).
				Str("record_id", rec.ID).
				Str("building_id", rec.BuildingID).
				Msg("threshold evaluation failed")
		}
	}
	if s.forwarder != nil {
		s.forwarder.Enqueue(*rec)
	}
}
