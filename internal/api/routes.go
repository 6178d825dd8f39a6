package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// Handlers groups the handlers mounted under /api.
type Handlers struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Tasks     *TaskHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the /api routes on r. Everything except sign-up and
// sign-in requires a bearer token.
func RegisterRoutes(r chi.Router, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-up", h.Auth.SignUp)
		r.Post("/auth/sign-in", h.Auth.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/user-profile", h.Auth.Profile)
			r.Put("/auth/update-profile", h.Auth.UpdateProfile)

			r.Get("/users/get-users", h.Users.ListMembers)
			r.Get("/users/{id}", h.Users.GetUser)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/dashboard-data", h.Dashboard.Global)
				r.Get("/user-dashboard-data", h.Dashboard.Member)
				r.Get("/", h.Tasks.ListTasks)
				r.Post("/create", h.Tasks.CreateTask)
				r.Get("/{id}", h.Tasks.GetTask)
				r.Put("/{id}", h.Tasks.UpdateTask)
				r.Delete("/{id}", h.Tasks.DeleteTask)
				r.Put("/{id}/status", h.Tasks.UpdateStatus)
				r.Put("/{id}/todo", h.Tasks.UpdateChecklist)
			})
		})
	})
}
