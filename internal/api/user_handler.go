package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// UserHandler serves the user directory endpoints.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// ListMembers handles GET /api/users/get-users. Admin only.
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	members, err := h.users.ListMembers(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := MembersResponse{
		Message: "Users fetched successfully",
		Users:   make([]MemberResponse, len(members)),
	}
	for i, m := range members {
		resp.Users[i] = newMemberResponse(m)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetUser handles GET /api/users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserEnvelope{
		Message: "User fetched successfully",
		User:    newUserResponse(user),
	})
}
