package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const userColumns = `id, name, email, hashed_password, profile_image_url, role, created_at, updated_at`

// PostgresUserStore implements store.UserStore on PostgreSQL.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a PostgresUserStore. It accepts a connection
// or a transaction managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_user_store")),
	}
}

// Create implements store.UserStore. The plaintext password is never stored.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "invalid user", errors.Join(store.ErrInvalidEntity, err))
	}
	user.Password = ""

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.HashedPassword, user.ProfileImageURL,
		string(user.Role), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return wrapFailure("user", "create", err)
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "get", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "get_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`,
		domain.NormalizeEmail(email))
}

func (s *PostgresUserStore) getOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, wrapFailure("user", op, err)
	}
	return user, nil
}

// FindByIDs implements store.UserStore.
func (s *PostgresUserStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	ids = domain.DedupeIDs(ids)
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	return s.query(ctx, "find_by_ids", query, args...)
}

// List implements store.UserStore.
func (s *PostgresUserStore) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if role == "" {
		return s.query(ctx, "list", `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	}
	return s.query(ctx, "list",
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at, id`, string(role))
}

func (s *PostgresUserStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query users",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, wrapFailure("user", op, err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, wrapFailure("user", op, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapFailure("user", op, err)
	}
	return users, nil
}

// Update implements store.UserStore.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "update", "invalid user", errors.Join(store.ErrInvalidEntity, err))
	}

	result, err := s.db.ExecContext(ctx, `UPDATE users SET
			name = $2, email = $3, hashed_password = $4, profile_image_url = $5, role = $6, updated_at = $7
		WHERE id = $1`,
		user.ID, user.Name, user.Email, user.HashedPassword, user.ProfileImageURL,
		string(user.Role), user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return wrapFailure("user", "update", err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}
	user.Password = ""
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.HashedPassword,
		&user.ProfileImageURL, &role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}
