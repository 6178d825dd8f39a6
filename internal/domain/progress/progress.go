// Package progress derives a task's completion percentage and status from
// its checklist. It is a pure calculator with no I/O.
package progress

import "github.com/phrazzld/taskboard-api/internal/domain"

// Result holds the values derived from a checklist.
type Result struct {
	Progress int
	Status   domain.TaskStatus
}

// Recompute calculates progress and status for the given checklist.
//
// Progress is 100 * completed / total rounded half up, computed in integer
// arithmetic as (200*completed + total) / (2*total). An empty checklist
// yields 0 and therefore Pending.
func Recompute(items []domain.ChecklistItem) Result {
	total := len(items)
	if total == 0 {
		return Result{Progress: 0, Status: domain.TaskStatusPending}
	}

	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}

	p := (200*completed + total) / (2 * total)
	return Result{Progress: p, Status: StatusFor(p)}
}

// StatusFor maps a progress percentage onto a task status.
func StatusFor(progress int) domain.TaskStatus {
	switch {
	case progress >= 100:
		return domain.TaskStatusCompleted
	case progress > 0:
		return domain.TaskStatusInProgress
	default:
		return domain.TaskStatusPending
	}
}

// Apply recomputes progress and status on the task in place.
func Apply(task *domain.Task) {
	r := Recompute(task.Checklist)
	task.Progress = r.Progress
	task.Status = r.Status
}
