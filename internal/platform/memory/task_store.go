package memory

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskStore is a mutex-guarded map of tasks.
// Tasks are cloned on the way in and out so callers never share memory
// with the store.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  map[uuid.UUID]*domain.Task
	logger *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty TaskStore.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		tasks:  make(map[uuid.UUID]*domain.Task),
		logger: logger.With(slog.String("component", "memory_task_store")),
	}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return store.NewStoreError("task", "create", "invalid task", errors.Join(store.ErrInvalidEntity, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.NewStoreError("task", "create", "task already exists", store.ErrDuplicate)
	}
	s.tasks[task.ID] = task.Clone()
	s.logger.DebugContext(ctx, "task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

// Find implements store.TaskStore.
func (s *TaskStore) Find(_ context.Context, filter store.TaskFilter, opts store.FindOptions) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Task
	for _, task := range s.tasks {
		if filter.Matches(task) {
			out = append(out, task.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Count implements store.TaskStore.
func (s *TaskStore) Count(_ context.Context, filter store.TaskFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, task := range s.tasks {
		if filter.Matches(task) {
			n++
		}
	}
	return n, nil
}

// CountBy implements store.TaskStore.
func (s *TaskStore) CountBy(_ context.Context, key store.GroupKey, filter store.TaskFilter) ([]store.GroupCount, error) {
	var field func(*domain.Task) string
	switch key {
	case store.GroupByStatus:
		field = func(t *domain.Task) string { return string(t.Status) }
	case store.GroupByPriority:
		field = func(t *domain.Task) string { return string(t.Priority) }
	default:
		return nil, store.NewStoreError("task", "count_by", "unsupported group key "+string(key), store.ErrInvalidEntity)
	}

	s.mu.RLock()
	counts := make(map[string]int)
	for _, task := range s.tasks {
		if filter.Matches(task) {
			counts[field(task)]++
		}
	}
	s.mu.RUnlock()

	out := make([]store.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, store.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Update implements store.TaskStore. The write lock is held across mutate,
// so concurrent updates to the store are serialized.
func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, mutate store.MutateFn) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id
	if err := working.Validate(); err != nil {
		return nil, store.NewStoreError("task", "update", "invalid task", errors.Join(store.ErrInvalidEntity, err))
	}

	s.tasks[id] = working
	s.logger.DebugContext(ctx, "task updated", slog.String("task_id", id.String()))
	return working.Clone(), nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	s.logger.DebugContext(ctx, "task deleted", slog.String("task_id", id.String()))
	return task, nil
}
