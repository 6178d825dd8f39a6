package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// memberCountConcurrency bounds the per-member count queries run at once.
const memberCountConcurrency = 8

// UserService provides account operations: registration, sign-in, profile
// management and the admin view of members.
type UserService interface {
	// Register creates an account. The admin role is granted only when the
	// supplied join code matches the configured one.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// Authenticate returns the user for valid credentials or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetProfile returns the actor's own account.
	GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error)

	// UpdateProfile applies a partial update to the actor's own account.
	UpdateProfile(ctx context.Context, actor domain.Actor, input UpdateProfileInput) (*domain.User, error)

	// ListMembers returns every member with their assignment counts. Admin only.
	ListMembers(ctx context.Context, actor domain.Actor) ([]*MemberSummary, error)

	// GetUser returns any user by ID.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// RegisterInput carries sign-up fields.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ProfileImageURL string
	AdminJoinCode   string
}

// UpdateProfileInput carries a partial profile update. Empty values keep
// the stored value.
type UpdateProfileInput struct {
	Name            string
	Email           string
	Password        string
	ProfileImageURL string
}

// MemberSummary is a member with per-status assignment counts.
type MemberSummary struct {
	User            *domain.User
	PendingTasks    int
	InProgressTasks int
	CompletedTasks  int
}

type userServiceImpl struct {
	users         store.UserStore
	tasks         store.TaskStore
	hasher        auth.PasswordHasher
	adminJoinCode string
	logger        *slog.Logger
	now           func() time.Time
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a UserService. An empty adminJoinCode disables
// admin self-registration.
func NewUserService(
	users store.UserStore,
	tasks store.TaskStore,
	hasher auth.PasswordHasher,
	adminJoinCode string,
	logger *slog.Logger,
) (UserService, error) {
	switch {
	case users == nil:
		return nil, &ServiceError{Service: "user", Op: "create_service", Err: errors.New("user store cannot be nil")}
	case tasks == nil:
		return nil, &ServiceError{Service: "user", Op: "create_service", Err: errors.New("task store cannot be nil")}
	case hasher == nil:
		return nil, &ServiceError{Service: "user", Op: "create_service", Err: errors.New("password hasher cannot be nil")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		users:         users,
		tasks:         tasks,
		hasher:        hasher,
		adminJoinCode: adminJoinCode,
		logger:        logger.With(slog.String("component", "user_service")),
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register implements UserService.
func (s *userServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	user.ProfileImageURL = strings.TrimSpace(input.ProfileImageURL)
	if s.joinCodeMatches(input.AdminJoinCode) {
		user.Role = domain.RoleAdmin
	}

	if existing, err := s.users.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	} else if err != nil && !store.IsNotFoundError(err) {
		log.Error("failed to check email availability", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if !store.IsDuplicateError(err) {
			log.Error("failed to create user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return user, nil
}

// Authenticate implements UserService.
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("sign-in for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for sign-in", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "authenticate", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Warn("password comparison failed",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetProfile implements UserService.
func (s *userServiceImpl) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.GetUser(ctx, actor.ID)
}

// UpdateProfile implements UserService.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, actor domain.Actor, input UpdateProfileInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, NewServiceError("user", "update_profile", err)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if email := domain.NormalizeEmail(input.Email); email != "" {
		user.Email = email
	}
	if url := strings.TrimSpace(input.ProfileImageURL); url != "" {
		user.ProfileImageURL = url
	}
	if input.Password != "" {
		if err := domain.ValidatePassword(input.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(input.Password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return nil, NewServiceError("user", "update_profile", err)
		}
		user.HashedPassword = hashed
	}
	user.UpdatedAt = s.now()

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		if !store.IsDuplicateError(err) {
			log.Error("failed to update user",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
		return nil, NewServiceError("user", "update_profile", err)
	}

	log.Info("profile updated", slog.String("user_id", user.ID.String()))
	return user, nil
}

// ListMembers implements UserService.
func (s *userServiceImpl) ListMembers(ctx context.Context, actor domain.Actor) ([]*MemberSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	members, err := s.users.List(ctx, domain.RoleMember)
	if err != nil {
		log.Error("failed to list members", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "list_members", err)
	}

	out := make([]*MemberSummary, len(members))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError().WithMaxGoroutines(memberCountConcurrency)
	for i, member := range members {
		summary := &MemberSummary{User: member}
		out[i] = summary
		counts := []struct {
			status domain.TaskStatus
			dst    *int
		}{
			{domain.TaskStatusPending, &summary.PendingTasks},
			{domain.TaskStatusInProgress, &summary.InProgressTasks},
			{domain.TaskStatusCompleted, &summary.CompletedTasks},
		}
		for _, c := range counts {
			filter := store.TaskFilter{AssignedTo: member.ID, Status: c.status}
			dst := c.dst
			p.Go(func(ctx context.Context) error {
				n, err := s.tasks.Count(ctx, filter)
				*dst = n
				return err
			})
		}
	}

	if err := p.Wait(); err != nil {
		log.Error("failed to count member tasks", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "list_members", err)
	}
	return out, nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to load user",
				slog.String("user_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}

func (s *userServiceImpl) joinCodeMatches(code string) bool {
	if s.adminJoinCode == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.adminJoinCode), []byte(code)) == 1
}
