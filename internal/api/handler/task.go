package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
	"github.com/carbonguardian/carbonguardian/internal/tasks"
)

// TaskHandler handles task and feedback endpoints.
type TaskHandler struct {
	svc *tasks.Service
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *tasks.Service) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create handles POST /v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateTaskRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	task, err := h.svc.Create(r.Context(), tasks.CreateInput{
		Title:       input.Title,
		Description: input.Description,
		AlertID:     input.AlertID,
		Assignee:    input.Assignee,
		DueDate:     input.DueDate,
	})
	if err != nil {
		response.InternalError(w, r, "failed to create task")
		return
	}

	location := fmt.Sprintf("/v1/tasks/%s", task.ID)
	response.Created(w, r, location, models.NewTaskResponse(task))
}

// List handles GET /v1/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := tasks.ListOptions{
		Status:   tasks.Status(r.URL.Query().Get("status")),
		Assignee: r.URL.Query().Get("assignee"),
	}

	list, err := h.svc.List(r.Context(), opts)
	if err != nil {
		response.InternalError(w, r, "failed to list tasks")
		return
	}

	resp := models.TaskListResponse{Tasks: make([]models.TaskResponse, 0, len(list))}
	for _, task := range list {
		resp.Tasks = append(resp.Tasks, models.NewTaskResponse(task))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// Get handles GET /v1/tasks/{taskId}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")
	task, err := h.svc.Get(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			response.NotFound(w, r, "task not found")
			return
		}
		response.InternalError(w, r, "failed to load task")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewTaskResponse(task))
}

// Transition handles PUT /v1/tasks/{taskId}/status.
func (h *TaskHandler) Transition(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	var input models.TaskTransitionRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	task, err := h.svc.Transition(r.Context(), taskID, tasks.Status(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, tasks.ErrTaskNotFound):
			response.NotFound(w, r, "task not found")
		case errors.Is(err, tasks.ErrInvalidTransition):
			response.Conflict(w, r, err.Error())
		default:
			response.InternalError(w, r, "failed to update task")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewTaskResponse(task))
}

// AddFeedback handles POST /v1/tasks/{taskId}/feedback - append one progress
// report. Reporting 100% completes the task.
func (h *TaskHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	var input models.AddFeedbackRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	fb, err := h.svc.AddFeedback(r.Context(), taskID, input.Author, input.Content, input.Progress)
	if err != nil {
		switch {
		case errors.Is(err, tasks.ErrTaskNotFound):
			response.NotFound(w, r, "task not found")
		case errors.Is(err, tasks.ErrInvalidProgress):
			response.BadRequest(w, r, err.Error(), nil)
		default:
			response.InternalError(w, r, "failed to add feedback")
		}
		return
	}
	response.Created(w, r, "", models.NewFeedbackResponse(fb))
}

// ListFeedback handles GET /v1/tasks/{taskId}/feedback - the append-only
// feedback history, oldest first.
func (h *TaskHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	list, err := h.svc.ListFeedback(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			response.NotFound(w, r, "task not found")
			return
		}
		response.InternalError(w, r, "failed to list feedback")
		return
	}

	resp := models.FeedbackListResponse{Feedback: make([]models.FeedbackResponse, 0, len(list))}
	for _, fb := range list {
		resp.Feedback = append(resp.Feedback, models.NewFeedbackResponse(fb))
	}
	response.JSON(w, r, http.StatusOK, resp)
}
