package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service manages the task lifecycle and feedback history.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new task service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateInput holds the fields for creating a task.
type CreateInput struct {
	Title       string
	Description string
	AlertID     string
	Assignee    string
	DueDate     time.Time
}

// Create registers a new pending task.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	now := time.Now()
	t := &Task{
		ID:          "tsk_" + uuid.New().String()[:22],
		Title:       input.Title,
		Description: input.Description,
		AlertID:     input.AlertID,
		Assignee:    input.Assignee,
		DueDate:     input.DueDate,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get retrieves a task by ID.
func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves tasks matching the filter.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Task, error) {
	return s.repo.List(ctx, opts)
}

// Transition moves a task through its lifecycle.
func (s *Service) Transition(ctx context.Context, id string, to Status) (*Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	t.Status = to
	if to == StatusCompleted {
		t.Progress = 100
	}
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddFeedback appends a progress report and moves the task's progress to
// match. Reporting 100 completes the task; a first report on a pending task
// starts it.
func (s *Service) AddFeedback(ctx context.Context, taskID, author, content string, progress int) (*Feedback, error) {
	if progress < 0 || progress > 100 {
		return nil, ErrInvalidProgress
	}

	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	f := &Feedback{
		ID:        "fbk_" + uuid.New().String()[:22],
		TaskID:    taskID,
		Author:    author,
		Content:   content,
		Progress:  progress,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AppendFeedback(ctx, f); err != nil {
		return nil, err
	}

	t.Progress = progress
	switch {
	case progress >= 100 && t.Status != StatusCompleted:
		t.Status = StatusCompleted
	case t.Status == StatusPending:
		t.Status = StatusInProgress
	}
	t.UpdatedAt = f.CreatedAt
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return f, nil
}

// ListFeedback retrieves a task's feedback history, oldest first.
func (s *Service) ListFeedback(ctx context.Context, taskID string) ([]*Feedback, error) {
	if _, err := s.repo.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListFeedback(ctx, taskID)
}

// MarkOverdue sweeps tasks past their due date into the overdue status.
// Returns the number of tasks transitioned. Run periodically by the worker.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, t := range due {
		t.Status = StatusOverdue
		t.UpdatedAt = now
		if err := s.repo.Update(ctx, t); err != nil {
			s.logger.Error().Err(err).Str("task_id", t.ID).Msg("overdue sweep update failed")
			continue
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info().Int("marked", marked).Msg("tasks marked overdue")
	}
	return marked, nil
}
