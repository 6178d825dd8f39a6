// Package domain holds the task board entities: users with their roles,
// tasks with checklists, and the validation rules both must satisfy before
// they are persisted. Authorization lives in domain/policy and checklist
// arithmetic in domain/progress.
package domain
