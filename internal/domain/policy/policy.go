// Package policy decides whether an actor may perform an operation on a task.
// Decisions are pure functions of the actor, the task and the operation.
package policy

import (
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Operation identifies a task operation subject to authorization.
type Operation int

// Task operations
const (
	OpCreate Operation = iota + 1
	OpReadAny
	OpReadOwn
	OpUpdateFull
	OpDelete
	OpUpdateStatus
	OpUpdateChecklist
)

// String returns a stable name for logging.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpReadAny:
		return "read_any"
	case OpReadOwn:
		return "read_own"
	case OpUpdateFull:
		return "update_full"
	case OpDelete:
		return "delete"
	case OpUpdateStatus:
		return "update_status"
	case OpUpdateChecklist:
		return "update_checklist"
	default:
		return "unknown"
	}
}

// needsTask reports whether the decision for op depends on the task itself.
func needsTask(op Operation) bool {
	switch op {
	case OpReadOwn, OpUpdateStatus, OpUpdateChecklist:
		return true
	default:
		return false
	}
}

// CanAccessTask reports whether actor may perform op on task.
// task may be nil for operations that are decided by role alone.
// Unknown roles and operations are denied.
func CanAccessTask(actor domain.Actor, task *domain.Task, op Operation) bool {
	if needsTask(op) && task == nil {
		return false
	}

	switch actor.Role {
	case domain.RoleAdmin:
		switch op {
		case OpCreate, OpReadAny, OpReadOwn, OpUpdateFull, OpDelete, OpUpdateStatus, OpUpdateChecklist:
			return true
		default:
			return false
		}
	case domain.RoleMember:
		switch op {
		case OpReadOwn, OpUpdateStatus, OpUpdateChecklist:
			return task.IsAssignedTo(actor.ID)
		default:
			return false
		}
	default:
		return false
	}
}

// ListScope returns the assignee filter a task listing must apply for actor.
// Admins are unscoped; everyone else only sees tasks assigned to them.
func ListScope(actor domain.Actor) (assignee uuid.UUID, scoped bool) {
	if actor.IsAdmin() {
		return uuid.Nil, false
	}
	return actor.ID, true
}
