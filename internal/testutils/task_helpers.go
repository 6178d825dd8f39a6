package testutils

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskOption customizes a task built by MustCreateTaskForTest.
type TaskOption func(*domain.Task)

// WithTaskAssignees sets the assignee list.
func WithTaskAssignees(ids ...uuid.UUID) TaskOption {
	return func(t *domain.Task) { t.AssignedTo = ids }
}

// WithTaskCreator sets CreatedBy.
func WithTaskCreator(id uuid.UUID) TaskOption {
	return func(t *domain.Task) { t.CreatedBy = id }
}

// WithTaskStatus sets the status without touching progress.
func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) { t.Status = s }
}

// WithTaskPriority sets the priority.
func WithTaskPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) { t.Priority = p }
}

// WithTaskDueDate sets the due date.
func WithTaskDueDate(due time.Time) TaskOption {
	return func(t *domain.Task) { t.DueDate = due }
}

// WithTaskCreatedAt sets both timestamps.
func WithTaskCreatedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CreatedAt = at
		t.UpdatedAt = at
	}
}

// WithTaskChecklist sets the checklist and progress without deriving status.
func WithTaskChecklist(items ...domain.ChecklistItem) TaskOption {
	return func(t *domain.Task) { t.Checklist = items }
}

// WithTaskProgress sets progress directly.
func WithTaskProgress(p int) TaskOption {
	return func(t *domain.Task) { t.Progress = p }
}

// MustCreateTaskForTest builds a valid pending task assigned to one random
// user and due tomorrow. It is not persisted.
func MustCreateTaskForTest(t *testing.T, opts ...TaskOption) *domain.Task {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	task := &domain.Task{
		ID:          uuid.New(),
		Title:       fmt.Sprintf("Test task %s", uuid.New().String()[:8]),
		Description: "created by test helper",
		Priority:    domain.PriorityMedium,
		Status:      domain.TaskStatusPending,
		DueDate:     now.Add(24 * time.Hour),
		CreatedBy:   uuid.New(),
		AssignedTo:  []uuid.UUID{uuid.New()},
		Checklist:   []domain.ChecklistItem{},
		Attachments: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(t, task.Validate(), "test task must be valid")
	return task
}

// Items builds a checklist with the first completed items marked done.
func Items(completed, total int) []domain.ChecklistItem {
	items := make([]domain.ChecklistItem, total)
	for i := range items {
		items[i] = domain.ChecklistItem{Text: fmt.Sprintf("step %d", i+1), Completed: i < completed}
	}
	return items
}
