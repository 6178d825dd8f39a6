package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyUserName    = errors.New("name cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrInvalidRole      = errors.New("invalid role")
)

// Role is the closed set of user roles.
type Role string

// Possible role values
const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// User represents a registered user of the task board.
type User struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Password        string    `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword  string    `json:"-"` // Never expose password hash in JSON
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Role            Role      `json:"role"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUser creates a new member User with the given name, email and password.
// The caller is responsible for hashing the password before storing the user.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		Role:      RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrEmptyUserID)
	}
	if u.Name == "" {
		return NewValidationError("name", "is required", ErrEmptyUserName)
	}
	if u.Email == "" {
		return NewValidationError("email", "is required", ErrEmptyEmail)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return NewValidationError("email", "is not a valid address", ErrInvalidEmail)
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "must be admin or member", ErrInvalidRole)
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			return err
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from a store only carry the hash
		return NewValidationError("password", "is required", ErrEmptyPassword)
	}

	return nil
}

// Actor returns the identity this user acts as.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// ValidatePassword enforces the password length policy (bcrypt caps input at 72 bytes).
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return NewValidationError("password", "is required", ErrEmptyPassword)
	case len(password) < 8:
		return NewValidationError("password", "is too short", ErrPasswordTooShort)
	case len(password) > 72:
		return NewValidationError("password", "is too long", ErrPasswordTooLong)
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserSummary is the display-only projection of a user attached to tasks.
type UserSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
}

// Summary projects the user to its display fields.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
	}
}
