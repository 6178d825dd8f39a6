package testutils

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TestPasswordHash is a syntactically valid bcrypt hash for stored test users.
const TestPasswordHash = "$2a$04$C6UzMDM.H6dfI/f/IKcEeO3ZpVb0rv/o7h0cC6p1Zx3tX1p3ZcWZ6"

// MustCreateUserForTest builds a stored-form user (hash set, no plaintext)
// with the given role and a unique email. It is not persisted.
func MustCreateUserForTest(t *testing.T, role domain.Role) *domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	short := uuid.New().String()[:8]
	user := &domain.User{
		ID:             uuid.New(),
		Name:           fmt.Sprintf("User %s", short),
		Email:          fmt.Sprintf("user-%s@example.com", short),
		HashedPassword: TestPasswordHash,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, user.Validate(), "test user must be valid")
	return user
}
