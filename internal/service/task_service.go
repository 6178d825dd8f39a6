package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/policy"
	"github.com/phrazzld/taskboard-api/internal/domain/progress"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService manages the task lifecycle: creation, retrieval, the three
// mutation paths and deletion, applying the authorization policy to each.
type TaskService interface {
	// CreateTask creates a task owned by the actor. Admin only.
	CreateTask(ctx context.Context, actor domain.Actor, input CreateTaskInput) (*domain.Task, error)

	// GetTask returns one task. Members may only read tasks assigned to them.
	GetTask(ctx context.Context, actor domain.Actor, id uuid.UUID) (*TaskDetails, error)

	// ListTasks returns the tasks visible to the actor with a status summary.
	ListTasks(ctx context.Context, actor domain.Actor, filter ListTasksFilter) (*TaskList, error)

	// UpdateTask merges the supplied fields into the task. Admin only.
	// Status is taken verbatim; progress is not recomputed.
	UpdateTask(ctx context.Context, actor domain.Actor, id uuid.UUID, input UpdateTaskInput) (*TaskDetails, error)

	// DeleteTask removes a task and returns what was deleted. Admin only.
	DeleteTask(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Task, error)

	// UpdateTaskStatus sets the status. Completing a task completes every
	// checklist item.
	UpdateTaskStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.TaskStatus) (*TaskDetails, error)

	// UpdateTaskChecklist replaces the checklist and derives progress and
	// status from it.
	UpdateTaskChecklist(ctx context.Context, actor domain.Actor, id uuid.UUID, items []domain.ChecklistItem) (*TaskDetails, error)
}

// CreateTaskInput carries the caller-supplied fields of a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.Priority // empty means Medium
	DueDate     time.Time
	AssignedTo  []uuid.UUID
	Checklist   []domain.ChecklistItem
	Attachments []string
}

// UpdateTaskInput carries a partial task update. Nil pointers and nil slices
// keep the stored value, as do empty strings.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	Status      *domain.TaskStatus
	DueDate     *time.Time
	AssignedTo  []uuid.UUID
	Checklist   []domain.ChecklistItem
	Attachments []string
}

// ListTasksFilter narrows a task listing.
type ListTasksFilter struct {
	// Status, when set, restricts the returned tasks. The summary counts
	// ignore it.
	Status domain.TaskStatus
}

// TaskDetails is a task with its derived and display-only fields.
type TaskDetails struct {
	Task           *domain.Task
	CompletedCount int
	// AssignedUsers has one entry per assignee ID, in task order. IDs with
	// no matching user carry only the ID.
	AssignedUsers []domain.UserSummary
}

// StatusSummary counts the actor's visible tasks per status.
type StatusSummary struct {
	All        int
	Pending    int
	InProgress int
	Completed  int
}

// TaskList is the result of ListTasks.
type TaskList struct {
	Tasks         []*TaskDetails
	StatusSummary StatusSummary
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService. It returns an error if a store is nil.
func NewTaskService(tasks store.TaskStore, users store.UserStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, &ServiceError{Service: "task", Op: "create_service", Err: errors.New("task store cannot be nil")}
	}
	if users == nil {
		return nil, &ServiceError{Service: "task", Op: "create_service", Err: errors.New("user store cannot be nil")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		users:  users,
		logger: logger.With(slog.String("component", "task_service")),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(ctx context.Context, actor domain.Actor, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !policy.CanAccessTask(actor, nil, policy.OpCreate) {
		return nil, domain.ErrForbidden
	}

	if err := domain.ValidateAssignees(input.AssignedTo); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := s.now()
	task := &domain.Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Priority:    priority,
		DueDate:     input.DueDate,
		CreatedBy:   actor.ID,
		AssignedTo:  domain.DedupeIDs(input.AssignedTo),
		Checklist:   nonNilChecklist(input.Checklist),
		Attachments: nonNilStrings(input.Attachments),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	progress.Apply(task)

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return nil, NewServiceError("task", "create", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", actor.ID.String()),
		slog.Int("assignees", len(task.AssignedTo)))
	return task, nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, actor domain.Actor, id uuid.UUID) (*TaskDetails, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure(ctx, "get", id, err)
	}

	if !policy.CanAccessTask(actor, task, policy.OpReadOwn) {
		return nil, domain.ErrForbidden
	}

	return s.details(ctx, task)
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context, actor domain.Actor, filter ListTasksFilter) (*TaskList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be Pending, In Progress or Completed", domain.ErrInvalidTaskStatus)
	}

	scope := store.TaskFilter{}
	if assignee, scoped := policy.ListScope(actor); scoped {
		scope.AssignedTo = assignee
	}

	find := scope
	find.Status = filter.Status

	var (
		tasks   []*domain.Task
		summary StatusSummary
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		tasks, err = s.tasks.Find(ctx, find, store.FindOptions{})
		return err
	})
	s.goCount(p, scope, "", &summary.All)
	s.goCount(p, scope, domain.TaskStatusPending, &summary.Pending)
	s.goCount(p, scope, domain.TaskStatusInProgress, &summary.InProgress)
	s.goCount(p, scope, domain.TaskStatusCompleted, &summary.Completed)

	if err := p.Wait(); err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("actor_id", actor.ID.String()))
		return nil, NewServiceError("task", "list", err)
	}

	users, err := s.lookupUsers(ctx, tasks...)
	if err != nil {
		log.Error("failed to resolve assignees", slog.String("error", err.Error()))
		return nil, NewServiceError("task", "list", err)
	}

	out := &TaskList{Tasks: make([]*TaskDetails, 0, len(tasks)), StatusSummary: summary}
	for _, task := range tasks {
		out.Tasks = append(out.Tasks, newTaskDetails(task, users))
	}
	return out, nil
}

// UpdateTask implements TaskService.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, actor domain.Actor, id uuid.UUID, input UpdateTaskInput) (*TaskDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !policy.CanAccessTask(actor, nil, policy.OpUpdateFull) {
		return nil, domain.ErrForbidden
	}
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, func(task *domain.Task) error {
		if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
			task.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil && *input.Description != "" {
			task.Description = *input.Description
		}
		if input.Priority != nil && *input.Priority != "" {
			task.Priority = *input.Priority
		}
		if input.Status != nil && *input.Status != "" {
			task.Status = *input.Status
		}
		if input.DueDate != nil && !input.DueDate.IsZero() {
			task.DueDate = *input.DueDate
		}
		if input.AssignedTo != nil {
			task.AssignedTo = domain.DedupeIDs(input.AssignedTo)
		}
		if input.Checklist != nil {
			task.Checklist = input.Checklist
		}
		if input.Attachments != nil {
			task.Attachments = input.Attachments
		}
		task.UpdatedAt = s.now()
		return domain.ValidateAssignees(task.AssignedTo)
	})
	if err != nil {
		return nil, s.storeFailure(ctx, "update", id, err)
	}

	log.Info("task updated", slog.String("task_id", id.String()))
	return s.details(ctx, updated)
}

// DeleteTask implements TaskService.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Task, error) {
	if !policy.CanAccessTask(actor, nil, policy.OpDelete) {
		return nil, domain.ErrForbidden
	}

	deleted, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return nil, s.storeFailure(ctx, "delete", id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("deleted_by", actor.ID.String()))
	return deleted, nil
}

// UpdateTaskStatus implements TaskService.
func (s *taskServiceImpl) UpdateTaskStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.TaskStatus) (*TaskDetails, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be Pending, In Progress or Completed", domain.ErrInvalidTaskStatus)
	}

	updated, err := s.tasks.Update(ctx, id, func(task *domain.Task) error {
		if !policy.CanAccessTask(actor, task, policy.OpUpdateStatus) {
			return domain.ErrForbidden
		}
		task.Status = status
		if status == domain.TaskStatusCompleted {
			for i := range task.Checklist {
				task.Checklist[i].Completed = true
			}
			task.Progress = 100
		}
		task.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, s.storeFailure(ctx, "update_status", id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task status updated",
		slog.String("task_id", id.String()),
		slog.String("status", string(status)))
	return s.details(ctx, updated)
}

// UpdateTaskChecklist implements TaskService.
func (s *taskServiceImpl) UpdateTaskChecklist(ctx context.Context, actor domain.Actor, id uuid.UUID, items []domain.ChecklistItem) (*TaskDetails, error) {
	if err := domain.ValidateChecklist(items); err != nil {
		return nil, err
	}
	items = nonNilChecklist(items)

	updated, err := s.tasks.Update(ctx, id, func(task *domain.Task) error {
		if !policy.CanAccessTask(actor, task, policy.OpUpdateChecklist) {
			return domain.ErrForbidden
		}
		task.Checklist = append([]domain.ChecklistItem(nil), items...)
		progress.Apply(task)
		task.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, s.storeFailure(ctx, "update_checklist", id, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task checklist updated",
		slog.String("task_id", id.String()),
		slog.Int("progress", updated.Progress),
		slog.String("status", string(updated.Status)))
	return s.details(ctx, updated)
}

// goCount schedules a count of scope narrowed to status into dst.
func (s *taskServiceImpl) goCount(p *pool.ContextPool, scope store.TaskFilter, status domain.TaskStatus, dst *int) {
	filter := scope
	filter.Status = status
	p.Go(func(ctx context.Context) error {
		n, err := s.tasks.Count(ctx, filter)
		*dst = n
		return err
	})
}

// details resolves assignee summaries for a single task.
func (s *taskServiceImpl) details(ctx context.Context, task *domain.Task) (*TaskDetails, error) {
	users, err := s.lookupUsers(ctx, task)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to resolve assignees",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return nil, NewServiceError("task", "resolve_assignees", err)
	}
	return newTaskDetails(task, users), nil
}

// lookupUsers loads every assignee of tasks in one query.
func (s *taskServiceImpl) lookupUsers(ctx context.Context, tasks ...*domain.Task) (map[uuid.UUID]*domain.User, error) {
	var ids []uuid.UUID
	for _, t := range tasks {
		ids = append(ids, t.AssignedTo...)
	}
	ids = domain.DedupeIDs(ids)
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.User{}, nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// storeFailure logs unexpected store errors and classifies the result.
func (s *taskServiceImpl) storeFailure(ctx context.Context, op string, id uuid.UUID, err error) error {
	classified := NewServiceError("task", op, err)
	var serviceErr *ServiceError
	if errors.As(classified, &serviceErr) {
		logger.FromContextOrDefault(ctx, s.logger).Error("task store operation failed",
			slog.String("operation", op),
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
	}
	return classified
}

func newTaskDetails(task *domain.Task, users map[uuid.UUID]*domain.User) *TaskDetails {
	assigned := make([]domain.UserSummary, 0, len(task.AssignedTo))
	for _, id := range task.AssignedTo {
		if u, ok := users[id]; ok {
			assigned = append(assigned, u.Summary())
			continue
		}
		assigned = append(assigned, domain.UserSummary{ID: id})
	}
	return &TaskDetails{
		Task:           task,
		CompletedCount: task.CompletedCount(),
		AssignedUsers:  assigned,
	}
}

// validateUpdateInput checks supplied values before any store access.
func validateUpdateInput(input UpdateTaskInput) error {
	if input.Priority != nil && *input.Priority != "" && !input.Priority.Valid() {
		return domain.NewValidationError("priority", "must be Low, Medium or High", domain.ErrInvalidPriority)
	}
	if input.Status != nil && *input.Status != "" && !input.Status.Valid() {
		return domain.NewValidationError("status", "must be Pending, In Progress or Completed", domain.ErrInvalidTaskStatus)
	}
	if input.AssignedTo != nil {
		if err := domain.ValidateAssignees(input.AssignedTo); err != nil {
			return err
		}
	}
	if input.Checklist != nil {
		if err := domain.ValidateChecklist(input.Checklist); err != nil {
			return err
		}
	}
	return nil
}

func nonNilChecklist(items []domain.ChecklistItem) []domain.ChecklistItem {
	if items == nil {
		return []domain.ChecklistItem{}
	}
	return items
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
