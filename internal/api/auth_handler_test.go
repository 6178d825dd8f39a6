package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("member by default", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)
		user, token := s.signUp(t, "Dana", "dana@example.com", "")
		assert.Equal(t, domain.RoleMember, user.Role)
		assert.NotEmpty(t, token)
	})

	t.Run("admin with join code", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)
		user, _ := s.signUp(t, "Ada", "ada@example.com", adminJoinCode)
		assert.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)
		s.signUp(t, "Dana", "dana@example.com", "")

		w := s.do(t, http.MethodPost, "/api/auth/sign-up", "", api.SignUpRequest{
			Name: "Other", Email: "DANA@example.com", Password: "correct-horse",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "User already exists", errorMessage(t, w))
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)

		tests := []struct {
			name string
			body any
			want string
		}{
			{"missing name", api.SignUpRequest{Email: "a@example.com", Password: "correct-horse"}, "Invalid name: is required"},
			{"bad email", api.SignUpRequest{Name: "A", Email: "nope", Password: "correct-horse"}, "Invalid email: must be a valid email address"},
			{"short password", api.SignUpRequest{Name: "A", Email: "a@example.com", Password: "short"}, "Invalid password: must be at least 8 characters"},
			{"malformed body", `{"name":`, "Invalid body: is not valid JSON"},
		}
		for _, tc := range tests {
			w := s.do(t, http.MethodPost, "/api/auth/sign-up", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
			assert.Equal(t, tc.want, errorMessage(t, w), tc.name)
		}
	})
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	created, _ := s.signUp(t, "Dana", "dana@example.com", "")

	w := s.do(t, http.MethodPost, "/api/auth/sign-in", "", api.SignInRequest{
		Email: "dana@example.com", Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp api.AuthResponse
	decode(t, w, &resp)
	assert.Equal(t, created.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	for _, body := range []api.SignInRequest{
		{Email: "dana@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "correct-horse"},
	} {
		w := s.do(t, http.MethodPost, "/api/auth/sign-in", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", errorMessage(t, w))
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	created, token := s.signUp(t, "Dana", "dana@example.com", "")

	t.Run("requires token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/auth/user-profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = s.do(t, http.MethodGet, "/api/auth/user-profile", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns own profile without password", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/auth/user-profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")

		var resp api.UserEnvelope
		decode(t, w, &resp)
		assert.Equal(t, created.ID, resp.User.ID)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/auth/update-profile", token, api.UpdateProfileRequest{Name: "Dana Scully"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.AuthResponse
		decode(t, w, &resp)
		assert.Equal(t, "Dana Scully", resp.User.Name)
		assert.Equal(t, "dana@example.com", resp.User.Email)
		assert.NotEmpty(t, resp.Token)
	})
}
