package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// AuthHandler serves sign-up, sign-in and the caller's own profile.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users service.UserService, jwtService auth.JWTService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// SignUp handles POST /api/auth/sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImageURL,
		AdminJoinCode:   req.AdminJoinCode,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, "User registered successfully", user)
}

// SignIn handles POST /api/auth/sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, "Signed in successfully", user)
}

// Profile handles GET /api/auth/user-profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserEnvelope{User: newUserResponse(user)})
}

// UpdateProfile handles PUT /api/auth/update-profile. The response carries a
// fresh token so a client holding a changed identity keeps working.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), actor, service.UpdateProfileInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, "Profile updated successfully", user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, message string, user *domain.User) {
	token, err := h.jwtService.GenerateToken(r.Context(), user.Actor())
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to generate token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		Message: message,
		User:    newUserResponse(user),
		Token:   token,
	})
}
