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

// UserStore is a mutex-guarded map of users with a unique email index.
type UserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
	logger  *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty UserStore.
func NewUserStore(logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		users:   make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
		logger:  logger.With(slog.String("component", "memory_user_store")),
	}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "invalid user", errors.Join(store.ErrInvalidEntity, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return store.ErrEmailExists
	}
	if _, exists := s.users[user.ID]; exists {
		return store.NewStoreError("user", "create", "user already exists", store.ErrDuplicate)
	}

	stored := *user
	stored.Password = ""
	s.users[user.ID] = stored
	s.byEmail[user.Email] = user.ID
	s.logger.DebugContext(ctx, "user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail implements store.UserStore.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

// FindByIDs implements store.UserStore.
func (s *UserStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(ids))
	for _, id := range domain.DedupeIDs(ids) {
		if u, ok := s.users[id]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

// List implements store.UserStore.
func (s *UserStore) List(_ context.Context, role domain.Role) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.User
	for _, u := range s.users {
		if u.Role == role {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update implements store.UserStore.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "update", "invalid user", errors.Join(store.ErrInvalidEntity, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if owner, taken := s.byEmail[user.Email]; taken && owner != user.ID {
		return store.ErrEmailExists
	}

	stored := *user
	stored.Password = ""
	stored.CreatedAt = existing.CreatedAt
	delete(s.byEmail, existing.Email)
	s.users[user.ID] = stored
	s.byEmail[user.Email] = user.ID
	s.logger.DebugContext(ctx, "user updated", slog.String("user_id", user.ID.String()))
	return nil
}
