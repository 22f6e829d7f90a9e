package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use a PostgreSQL
// repository behind the same interface.
type InMemoryRepository struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	feedback map[string][]*Feedback // taskID -> entries in append order
}

// NewInMemoryRepository creates a new in-memory task repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tasks:    make(map[string]*Task),
		feedback: make(map[string][]*Feedback),
	}
}

// Get retrieves a task by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cpy := *t
	return &cpy, nil
}

// List retrieves tasks matching the filter, newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Task
	for _, t := range r.tasks {
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		if opts.Assignee != "" && t.Assignee != opts.Assignee {
			continue
		}
		if opts.AlertID != "" && t.AlertID != opts.AlertID {
			continue
		}
		cpy := *t
		out = append(out, &cpy)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Create persists a new task.
func (r *InMemoryRepository) Create(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *t
	r.tasks[t.ID] = &cpy
	return nil
}

// Update replaces an existing task.
func (r *InMemoryRepository) Update(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; !ok {
		return ErrTaskNotFound
	}
	cpy := *t
	r.tasks[t.ID] = &cpy
	return nil
}

// AppendFeedback stores one feedback entry.
func (r *InMemoryRepository) AppendFeedback(_ context.Context, f *Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[f.TaskID]; !ok {
		return ErrTaskNotFound
	}
	cpy := *f
	r.feedback[f.TaskID] = append(r.feedback[f.TaskID], &cpy)
	return nil
}

// ListFeedback retrieves a task's feedback, oldest first.
func (r *InMemoryRepository) ListFeedback(_ context.Context, taskID string) ([]*Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.feedback[taskID]
	out := make([]*Feedback, 0, len(entries))
	for _, f := range entries {
		cpy := *f
		out = append(out, &cpy)
	}
	return out, nil
}

// ListDueBefore retrieves non-terminal tasks with a due date before cutoff.
func (r *InMemoryRepository) ListDueBefore(_ context.Context, cutoff time.Time) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Task
	for _, t := range r.tasks {
		if t.Status == StatusCompleted || t.Status == StatusOverdue {
			continue
		}
		if t.DueDate.IsZero() || !t.DueDate.Before(cutoff) {
			continue
		}
		cpy := *t
		out = append(out, &cpy)
	}
	return out, nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
