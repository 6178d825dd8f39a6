package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// UserStore persists accounts. Emails are stored normalized and are unique;
// writes that collide return ErrEmailExists. Lookups of unknown accounts
// return ErrUserNotFound. Password hashing happens before the store is called.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByIDs skips IDs with no matching account.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)

	// List filters by role when role is non-empty. Oldest accounts first.
	List(ctx context.Context, role domain.Role) ([]*domain.User, error)

	Update(ctx context.Context, user *domain.User) error
}
