package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// Priority represents how urgent a task is
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Common validation errors for Task
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrEmptyDueDate       = errors.New("task due date cannot be empty")
	ErrEmptyCreatedBy     = errors.New("task creator cannot be empty")
	ErrNoAssignees        = errors.New("assignedTo must be a non-empty array")
	ErrInvalidAssignee    = errors.New("assignee ID cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrInvalidPriority    = errors.New("invalid task priority")
	ErrEmptyChecklistText = errors.New("checklist item text cannot be empty")
	ErrInvalidProgress    = errors.New("progress must be between 0 and 100")
)

// ParseTaskStatus converts a wire value into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", ErrInvalidTaskStatus
	}
	return status, nil
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Key returns the status name with whitespace removed, as used for
// distribution map keys ("In Progress" becomes "InProgress").
func (s TaskStatus) Key() string {
	return strings.ReplaceAll(string(s), " ", "")
}

// ParsePriority converts a wire value into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ChecklistItem is a single to-do entry within a task. The json tags are the
// stored JSONB shape.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is a unit of work created by an admin and assigned to one or more users.
// Progress and Status are normally derived from the checklist, except when
// an admin edits the task directly.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Priority    Priority
	Status      TaskStatus
	DueDate     time.Time
	CreatedBy   uuid.UUID
	AssignedTo  []uuid.UUID
	Checklist   []ChecklistItem
	Progress    int
	Attachments []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrEmptyTaskID)
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "is required", ErrEmptyTaskTitle)
	}
	if t.DueDate.IsZero() {
		return NewValidationError("dueDate", "is required", ErrEmptyDueDate)
	}
	if t.CreatedBy == uuid.Nil {
		return NewValidationError("createdBy", "is required", ErrEmptyCreatedBy)
	}
	if err := ValidateAssignees(t.AssignedTo); err != nil {
		return err
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "must be Low, Medium or High", ErrInvalidPriority)
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "must be Pending, In Progress or Completed", ErrInvalidTaskStatus)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return NewValidationError("progress", "is out of range", ErrInvalidProgress)
	}
	return ValidateChecklist(t.Checklist)
}

// CompletedCount returns the number of completed checklist items.
func (t *Task) CompletedCount() int {
	n := 0
	for _, item := range t.Checklist {
		if item.Completed {
			n++
		}
	}
	return n
}

// IsOverdue reports whether the task is past due and not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.DueDate.Before(now)
}

// IsAssignedTo reports whether userID is one of the task's assignees.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.AssignedTo = append([]uuid.UUID(nil), t.AssignedTo...)
	c.Checklist = append([]ChecklistItem(nil), t.Checklist...)
	c.Attachments = append([]string(nil), t.Attachments...)
	return &c
}

// ValidateAssignees requires a non-empty list of non-nil user IDs.
func ValidateAssignees(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return NewValidationError("assignedTo", "must be a non-empty array", ErrNoAssignees)
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return NewValidationError("assignedTo", "contains an empty ID", ErrInvalidAssignee)
		}
	}
	return nil
}

// ValidateChecklist requires every item to carry text.
func ValidateChecklist(items []ChecklistItem) error {
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			return NewValidationError("todoChecklist", "item text is required", ErrEmptyChecklistText)
		}
	}
	return nil
}

// DedupeIDs returns ids with duplicates removed, keeping first occurrence order.
func DedupeIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
