// Package tasks provides work-item tracking for alert remediation.
package tasks

import (
	"errors"
	"time"
)

// Task errors.
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid task status transition")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

// taskTransitions defines the legal lifecycle moves. Overdue is entered
// either explicitly or by the maintenance sweep, and can still be worked.
var taskTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusOverdue},
	StatusInProgress: {StatusCompleted, StatusOverdue},
	StatusOverdue:    {StatusInProgress, StatusCompleted},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Task is a tracked work item, optionally linked to an alert.
type Task struct {
	ID          string
	Title       string
	Description string
	AlertID     string // empty when not created from an alert
	Assignee    string
	DueDate     time.Time
	Status      Status
	Progress    int // 0..100, follows the latest feedback
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Feedback is one progress report on a task. Feedback history is append-only
// and ordered by creation time.
type Feedback struct {
	ID        string
	TaskID    string
	Author    string
	Content   string
	Progress  int // 0..100
	CreatedAt time.Time
}
