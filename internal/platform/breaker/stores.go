package breaker

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskStore guards a store.TaskStore with a circuit breaker.
type TaskStore struct {
	next store.TaskStore
	cb   *gobreaker.CircuitBreaker
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore wraps next.
func NewTaskStore(next store.TaskStore, cfg config.BreakerConfig, logger *slog.Logger) *TaskStore {
	return &TaskStore{next: next, cb: NewCircuitBreaker("task_store", cfg, logger)}
}

// State returns the breaker state.
func (s *TaskStore) State() gobreaker.State { return s.cb.State() }

func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	_, err := execute(s.cb, "task", "create", none(func() error { return s.next.Create(ctx, task) }))
	return err
}

func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return execute(s.cb, "task", "get", func() (*domain.Task, error) { return s.next.GetByID(ctx, id) })
}

func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter, opts store.FindOptions) ([]*domain.Task, error) {
	return execute(s.cb, "task", "find", func() ([]*domain.Task, error) { return s.next.Find(ctx, filter, opts) })
}

func (s *TaskStore) Count(ctx context.Context, filter store.TaskFilter) (int, error) {
	return execute(s.cb, "task", "count", func() (int, error) { return s.next.Count(ctx, filter) })
}

func (s *TaskStore) CountBy(ctx context.Context, key store.GroupKey, filter store.TaskFilter) ([]store.GroupCount, error) {
	return execute(s.cb, "task", "count_by", func() ([]store.GroupCount, error) {
		return s.next.CountBy(ctx, key, filter)
	})
}

func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, mutate store.MutateFn) (*domain.Task, error) {
	return execute(s.cb, "task", "update", func() (*domain.Task, error) { return s.next.Update(ctx, id, mutate) })
}

func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return execute(s.cb, "task", "delete", func() (*domain.Task, error) { return s.next.Delete(ctx, id) })
}

// UserStore guards a store.UserStore with a circuit breaker.
type UserStore struct {
	next store.UserStore
	cb   *gobreaker.CircuitBreaker
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore wraps next.
func NewUserStore(next store.UserStore, cfg config.BreakerConfig, logger *slog.Logger) *UserStore {
	return &UserStore{next: next, cb: NewCircuitBreaker("user_store", cfg, logger)}
}

// State returns the breaker state.
func (s *UserStore) State() gobreaker.State { return s.cb.State() }

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	_, err := execute(s.cb, "user", "create", none(func() error { return s.next.Create(ctx, user) }))
	return err
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return execute(s.cb, "user", "get", func() (*domain.User, error) { return s.next.GetByID(ctx, id) })
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return execute(s.cb, "user", "get_by_email", func() (*domain.User, error) { return s.next.GetByEmail(ctx, email) })
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	return execute(s.cb, "user", "find_by_ids", func() ([]*domain.User, error) { return s.next.FindByIDs(ctx, ids) })
}

func (s *UserStore) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return execute(s.cb, "user", "list", func() ([]*domain.User, error) { return s.next.List(ctx, role) })
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	_, err := execute(s.cb, "user", "update", none(func() error { return s.next.Update(ctx, user) }))
	return err
}
