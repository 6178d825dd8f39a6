package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskFilter narrows a task query. Zero-valued fields are ignored.
type TaskFilter struct {
	// Status matches tasks in exactly this status.
	Status domain.TaskStatus
	// ExcludeStatus drops tasks in this status.
	ExcludeStatus domain.TaskStatus
	// AssignedTo matches tasks whose assignee list contains this user.
	AssignedTo uuid.UUID
	// DueBefore matches tasks due strictly before this instant.
	DueBefore time.Time
}

// Matches reports whether task satisfies the filter.
// In-process stores use it directly; SQL and document stores translate
// the same fields into their own query language.
func (f TaskFilter) Matches(task *domain.Task) bool {
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.ExcludeStatus != "" && task.Status == f.ExcludeStatus {
		return false
	}
	if f.AssignedTo != uuid.Nil && !task.IsAssignedTo(f.AssignedTo) {
		return false
	}
	if !f.DueBefore.IsZero() && !task.DueDate.Before(f.DueBefore) {
		return false
	}
	return true
}

// FindOptions controls ordering and paging for Find.
// Results are always ordered newest first by creation time.
type FindOptions struct {
	// Limit caps the number of results; zero means unlimited.
	Limit int
}

// GroupKey selects the field CountBy groups on.
type GroupKey string

// Supported group keys
const (
	GroupByStatus   GroupKey = "status"
	GroupByPriority GroupKey = "priority"
)

// GroupCount is one bucket of a CountBy aggregation.
type GroupCount struct {
	Key   string
	Count int
}

// MutateFn edits a task in place during an atomic update.
// Returning an error aborts the update without writing.
type MutateFn func(task *domain.Task) error

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity wrapping the domain error if the task is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Find returns the tasks matching filter, newest first.
	Find(ctx context.Context, filter TaskFilter, opts FindOptions) ([]*domain.Task, error)

	// Count returns the number of tasks matching filter.
	Count(ctx context.Context, filter TaskFilter) (int, error)

	// CountBy groups the tasks matching filter by key and counts each group.
	// Groups with no tasks are omitted.
	CountBy(ctx context.Context, key GroupKey, filter TaskFilter) ([]GroupCount, error)

	// Update loads the task, applies mutate and persists the result as one
	// atomic read-modify-write. It returns the saved task.
	// Returns ErrTaskNotFound if the task does not exist, or the error from
	// mutate unchanged if mutate fails.
	Update(ctx context.Context, id uuid.UUID, mutate MutateFn) (*domain.Task, error)

	// Delete removes a task and returns the deleted snapshot.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// CountsToMap converts CountBy results into a map keyed by group key.
func CountsToMap(counts []GroupCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Key] += c.Count
	}
	return m
}
