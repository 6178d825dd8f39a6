package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Ada Lovelace ", " Ada@Example.COM ", "password123")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, RoleMember, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.False(t, user.UpdatedAt.IsZero())
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"empty name", "", "a@example.com", "password123", ErrEmptyUserName},
		{"empty email", "Ada", "", "password123", ErrEmptyEmail},
		{"invalid email", "Ada", "not-an-email", "password123", ErrInvalidEmail},
		{"empty password", "Ada", "a@example.com", "", ErrEmptyPassword},
		{"short password", "Ada", "a@example.com", "short", ErrPasswordTooShort},
		{"long password", "Ada", "a@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tc.userName, tc.email, tc.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	user := User{
		ID:             uuid.New(),
		Name:           "Grace",
		Email:          "grace@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
		Role:           RoleAdmin,
	}
	assert.NoError(t, user.Validate())

	user.Role = "owner"
	assert.ErrorIs(t, user.Validate(), ErrInvalidRole)
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("member")
	require.NoError(t, err)
	assert.Equal(t, RoleMember, r)

	_, err = ParseRole("user")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserProjections(t *testing.T) {
	t.Parallel()

	user := &User{
		ID:              uuid.New(),
		Name:            "Linus",
		Email:           "linus@example.com",
		ProfileImageURL: "https://img.example.com/linus.png",
		Role:            RoleMember,
	}

	actor := user.Actor()
	assert.Equal(t, user.ID, actor.ID)
	assert.False(t, actor.IsAdmin())

	summary := user.Summary()
	assert.Equal(t, UserSummary{
		ID:              user.ID,
		Name:            "Linus",
		Email:           "linus@example.com",
		ProfileImageURL: "https://img.example.com/linus.png",
	}, summary)
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewValidationError("title", "is required", nil)
	assert.Equal(t, "validation failed: title is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)

	err = NewValidationError("", "bad input", ErrInvalidID)
	assert.Equal(t, "validation failed: bad input", err.Error())
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, err, ErrValidation)
}
