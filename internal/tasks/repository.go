package tasks

import (
	"context"
	"time"
)

// ListOptions filters task listings.
type ListOptions struct {
	Status   Status
	Assignee string
	AlertID  string
	Limit    int
}

// Repository defines the interface for task persistence.
type Repository interface {
	// Get retrieves a task by ID.
	Get(ctx context.Context, id string) (*Task, error)

	// List retrieves tasks matching the filter, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Task, error)

	// Create persists a new task.
	Create(ctx context.Context, t *Task) error

	// Update replaces an existing task.
	Update(ctx context.Context, t *Task) error

	// AppendFeedback stores one feedback entry.
	AppendFeedback(ctx context.Context, f *Feedback) error

	// ListFeedback retrieves a task's feedback, oldest first.
	ListFeedback(ctx context.Context, taskID string) ([]*Feedback, error)

	// ListDueBefore retrieves non-terminal tasks with a due date before
	// the cutoff. Used by the overdue sweep.
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]*Task, error)
}
