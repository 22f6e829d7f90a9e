package models

import (
	"time"

	"github.com/carbonguardian/carbonguardian/internal/tasks"
)

// CreateTaskRequest is the body of a task creation.
type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	AlertID     string    `json:"alertId,omitempty"`
	Assignee    string    `json:"assignee" validate:"max=100"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
}

// TaskTransitionRequest moves a task through its lifecycle.
type TaskTransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed"`
}

// AddFeedbackRequest appends one progress report to a task.
type AddFeedbackRequest struct {
	Author   string `json:"author" validate:"required,max=100"`
	Content  string `json:"content" validate:"required,max=2000"`
	Progress int    `json:"progress" validate:"gte=0,lte=100"`
}

// TaskResponse is the representation of a task.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AlertID     string    `json:"alertId,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	DueDate     Timestamp `json:"dueDate"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// TaskListResponse is a listing of tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// FeedbackResponse is the representation of one progress report.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Progress  int       `json:"progress"`
	CreatedAt Timestamp `json:"createdAt"`
}

// FeedbackListResponse is the feedback history of a task, oldest first.
type FeedbackListResponse struct {
	Feedback []FeedbackResponse `json:"feedback"`
}

// NewTaskResponse converts a domain task to its API representation.
func NewTaskResponse(t *tasks.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AlertID:     t.AlertID,
		Assignee:    t.Assignee,
		DueDate:     Timestamp(t.DueDate),
		Status:      string(t.Status),
		Progress:    t.Progress,
		CreatedAt:   Timestamp(t.CreatedAt),
		UpdatedAt:   Timestamp(t.UpdatedAt),
	}
}

// NewFeedbackResponse converts a domain feedback entry to its API
// representation.
func NewFeedbackResponse(f *tasks.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		TaskID:    f.TaskID,
		Author:    f.Author,
		Content:   f.Content,
		Progress:  f.Progress,
		CreatedAt: Timestamp(f.CreatedAt),
	}
}
