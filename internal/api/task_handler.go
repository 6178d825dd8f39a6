package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TaskHandler serves the task lifecycle endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/tasks/create.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dueDate, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), actor, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueDate:     dueDate,
		AssignedTo:  req.AssignedTo,
		Checklist:   toChecklist(req.TodoChecklist),
		Attachments: req.Attachments,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TaskEnvelope{
		Message: "Task created successfully",
		Task:    newTaskResponse(task, nil),
	})
}

// ListTasks handles GET /api/tasks with an optional ?status= filter.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	list, err := h.tasks.ListTasks(r.Context(), actor, service.ListTasksFilter{
		Status: domain.TaskStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := TaskListResponse{
		Tasks: make([]TaskResponse, len(list.Tasks)),
		StatusSummary: StatusSummaryResponse{
			All:             list.StatusSummary.All,
			PendingTasks:    list.StatusSummary.Pending,
			InProgressTasks: list.StatusSummary.InProgress,
			CompletedTasks:  list.StatusSummary.Completed,
		},
	}
	for i, d := range list.Tasks {
		resp.Tasks[i] = newTaskDetailsResponse(d)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	details, err := h.tasks.GetTask(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Task: newTaskDetailsResponse(details)})
}

// UpdateTask handles PUT /api/tasks/{id}. Admin only.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Checklist:   toChecklist(req.TodoChecklist),
		Attachments: req.Attachments,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		input.Priority = &p
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		input.Status = &s
	}
	if req.DueDate != nil && *req.DueDate != "" {
		var due time.Time
		if due, err = parseDate("dueDate", *req.DueDate); err != nil {
			HandleAPIError(w, r, err)
			return
		}
		input.DueDate = &due
	}

	details, err := h.tasks.UpdateTask(r.Context(), actor, id, input)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{
		Message: "Task updated successfully",
		Task:    newTaskDetailsResponse(details),
	})
}

// DeleteTask handles DELETE /api/tasks/{id}. Admin only.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	deleted, err := h.tasks.DeleteTask(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{
		Message: "Task deleted successfully",
		Task:    newTaskResponse(deleted, nil),
	})
}

// UpdateStatus handles PUT /api/tasks/{id}/status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	details, err := h.tasks.UpdateTaskStatus(r.Context(), actor, id, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{
		Message: "Task status updated",
		Task:    newTaskDetailsResponse(details),
	})
}

// UpdateChecklist handles PUT /api/tasks/{id}/todo.
func (h *TaskHandler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateChecklistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	items := toChecklist(req.TodoChecklist)
	if items == nil {
		items = []domain.ChecklistItem{}
	}
	details, err := h.tasks.UpdateTaskChecklist(r.Context(), actor, id, items)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{
		Message: "Task checklist updated",
		Task:    newTaskDetailsResponse(details),
	})
}
