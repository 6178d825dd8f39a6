package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// SignUpRequest is the payload of POST /api/auth/sign-up.
type SignUpRequest struct {
	Name            string `json:"name"            validate:"required"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=8,max=72"`
	ProfileImageURL string `json:"profileImageUrl" validate:"omitempty,url"`
	AdminJoinCode   string `json:"adminJoinCode"`
}

// SignInRequest is the payload of POST /api/auth/sign-in.
type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the payload of PUT /api/auth/update-profile.
// Omitted or empty fields keep their stored value.
type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"           validate:"omitempty,email"`
	Password        string `json:"password"        validate:"omitempty,min=8,max=72"`
	ProfileImageURL string `json:"profileImageUrl" validate:"omitempty,url"`
}

// UserResponse is the public view of a user. It never carries the password.
type UserResponse struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	ProfileImageURL string      `json:"profileImageUrl"`
	Role            domain.Role `json:"role"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
}

// MemberResponse is a member with assignment counts.
type MemberResponse struct {
	UserResponse
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
}

// MembersResponse is returned by GET /api/users/get-users.
type MembersResponse struct {
	Message string           `json:"message"`
	Users   []MemberResponse `json:"users"`
}

// ChecklistItemPayload is one checklist entry on the wire.
type ChecklistItemPayload struct {
	Text      string `json:"text"      validate:"required"`
	Completed bool   `json:"completed"`
}

// CreateTaskRequest is the payload of POST /api/tasks/create. Status is
// derived from the checklist and cannot be supplied.
type CreateTaskRequest struct {
	Title         string                 `json:"title"         validate:"required"`
	Description   string                 `json:"description"`
	Priority      string                 `json:"priority"      validate:"omitempty,oneof=Low Medium High"`
	DueDate       string                 `json:"dueDate"       validate:"required"`
	AssignedTo    []uuid.UUID            `json:"assignedTo"`
	TodoChecklist []ChecklistItemPayload `json:"todoChecklist" validate:"dive"`
	Attachments   []string               `json:"attachments"`
}

// UpdateTaskRequest is the payload of PUT /api/tasks/{id}. Omitted fields
// keep their stored value.
type UpdateTaskRequest struct {
	Title         *string                `json:"title"`
	Description   *string                `json:"description"`
	Priority      *string                `json:"priority"`
	Status        *string                `json:"status"`
	DueDate       *string                `json:"dueDate"`
	AssignedTo    []uuid.UUID            `json:"assignedTo"`
	TodoChecklist []ChecklistItemPayload `json:"todoChecklist" validate:"dive"`
	Attachments   []string               `json:"attachments"`
}

// UpdateStatusRequest is the payload of PUT /api/tasks/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateChecklistRequest is the payload of PUT /api/tasks/{id}/todo.
type UpdateChecklistRequest struct {
	TodoChecklist []ChecklistItemPayload `json:"todoChecklist" validate:"dive"`
}

// AssigneeResponse is an assignee as shown on a task.
type AssigneeResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name,omitempty"`
	Email           string    `json:"email,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID                 uuid.UUID              `json:"id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Priority           domain.Priority        `json:"priority"`
	Status             domain.TaskStatus      `json:"status"`
	DueDate            time.Time              `json:"dueDate"`
	CreatedBy          uuid.UUID              `json:"createdBy"`
	AssignedTo         []AssigneeResponse     `json:"assignedTo"`
	TodoChecklist      []ChecklistItemPayload `json:"todoChecklist"`
	Progress           int                    `json:"progress"`
	Attachments        []string               `json:"attachments"`
	CompletedTodoCount int                    `json:"completedTodoCount"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// TaskEnvelope wraps a single task with a message.
type TaskEnvelope struct {
	Message string       `json:"message,omitempty"`
	Task    TaskResponse `json:"task"`
}

// StatusSummaryResponse counts the caller's visible tasks per status.
type StatusSummaryResponse struct {
	All             int `json:"all"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
}

// TaskListResponse is returned by GET /api/tasks.
type TaskListResponse struct {
	Tasks         []TaskResponse        `json:"tasks"`
	StatusSummary StatusSummaryResponse `json:"statusSummary"`
}

// StatisticsResponse holds the dashboard headline counts.
type StatisticsResponse struct {
	TotalTasks      int `json:"totalTasks"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
	OverdueTasks    int `json:"overdueTasks"`
}

// ChartsResponse holds the dashboard distributions.
type ChartsResponse struct {
	TaskDistribution   map[string]int `json:"taskDistribution"`
	TaskPriorityLevels map[string]int `json:"taskPriorityLevels"`
}

// RecentTaskResponse is a dashboard row.
type RecentTaskResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Status    domain.TaskStatus `json:"status"`
	Priority  domain.Priority   `json:"priority"`
	DueDate   time.Time         `json:"dueDate"`
	CreatedAt time.Time         `json:"createdAt"`
}

// DashboardResponse is returned by both dashboard endpoints.
type DashboardResponse struct {
	Statistics  StatisticsResponse   `json:"statistics"`
	Charts      ChartsResponse       `json:"charts"`
	RecentTasks []RecentTaskResponse `json:"recentTasks"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
		Role:            u.Role,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func newMemberResponse(m *service.MemberSummary) MemberResponse {
	return MemberResponse{
		UserResponse:    newUserResponse(m.User),
		PendingTasks:    m.PendingTasks,
		InProgressTasks: m.InProgressTasks,
		CompletedTasks:  m.CompletedTasks,
	}
}

// newTaskResponse renders task. When assignees is nil the assignee IDs are
// rendered without display fields.
func newTaskResponse(task *domain.Task, assignees []domain.UserSummary) TaskResponse {
	resp := TaskResponse{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		Priority:           task.Priority,
		Status:             task.Status,
		DueDate:            task.DueDate,
		CreatedBy:          task.CreatedBy,
		TodoChecklist:      make([]ChecklistItemPayload, len(task.Checklist)),
		Progress:           task.Progress,
		Attachments:        append([]string{}, task.Attachments...),
		CompletedTodoCount: task.CompletedCount(),
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}
	for i, item := range task.Checklist {
		resp.TodoChecklist[i] = ChecklistItemPayload{Text: item.Text, Completed: item.Completed}
	}

	if assignees == nil {
		resp.AssignedTo = make([]AssigneeResponse, len(task.AssignedTo))
		for i, id := range task.AssignedTo {
			resp.AssignedTo[i] = AssigneeResponse{ID: id}
		}
		return resp
	}

	resp.AssignedTo = make([]AssigneeResponse, len(assignees))
	for i, u := range assignees {
		resp.AssignedTo[i] = AssigneeResponse{
			ID:              u.ID,
			Name:            u.Name,
			Email:           u.Email,
			ProfileImageURL: u.ProfileImageURL,
		}
	}
	return resp
}

func newTaskDetailsResponse(d *service.TaskDetails) TaskResponse {
	assignees := d.AssignedUsers
	if assignees == nil {
		assignees = []domain.UserSummary{}
	}
	resp := newTaskResponse(d.Task, assignees)
	resp.CompletedTodoCount = d.CompletedCount
	return resp
}

func newDashboardResponse(d *service.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Statistics: StatisticsResponse{
			TotalTasks:      d.Statistics.TotalTasks,
			PendingTasks:    d.Statistics.PendingTasks,
			InProgressTasks: d.Statistics.InProgressTasks,
			CompletedTasks:  d.Statistics.CompletedTasks,
			OverdueTasks:    d.Statistics.OverdueTasks,
		},
		Charts: ChartsResponse{
			TaskDistribution:   d.Charts.TaskDistribution,
			TaskPriorityLevels: d.Charts.TaskPriorityLevels,
		},
		RecentTasks: make([]RecentTaskResponse, len(d.RecentTasks)),
	}
	for i, t := range d.RecentTasks {
		resp.RecentTasks[i] = RecentTaskResponse{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Priority:  t.Priority,
			DueDate:   t.DueDate,
			CreatedAt: t.CreatedAt,
		}
	}
	return resp
}

func toChecklist(items []ChecklistItemPayload) []domain.ChecklistItem {
	if items == nil {
		return nil
	}
	out := make([]domain.ChecklistItem, len(items))
	for i, item := range items {
		out[i] = domain.ChecklistItem{Text: item.Text, Completed: item.Completed}
	}
	return out
}
