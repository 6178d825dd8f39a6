package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const taskColumns = `id, title, description, priority, status, due_date, created_by,
	assigned_to, todo_checklist, progress, attachments, created_at, updated_at`

// PostgresTaskStore implements store.TaskStore on PostgreSQL. Assignees,
// checklist and attachments are stored as JSONB columns.
type PostgresTaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a PostgresTaskStore. If logger is nil the
// default logger is used.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_task_store")),
	}
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return store.NewStoreError("task", "create", "invalid task", errors.Join(store.ErrInvalidEntity, err))
	}

	row, err := toTaskRow(task)
	if err != nil {
		return store.NewStoreError("task", "create", "failed to encode task", err)
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := s.db.ExecContext(ctx, query, row.args()...); err != nil {
		log.Error("failed to create task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return wrapFailure("task", "create", err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, s.db, id, false)
}

func (s *PostgresTaskStore) getByID(ctx context.Context, db store.DBTX, id uuid.UUID, forUpdate bool) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	task, err := scanTask(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, wrapFailure("task", "get", err)
	}
	return task, nil
}

// Find implements store.TaskStore.
func (s *PostgresTaskStore) Find(ctx context.Context, filter store.TaskFilter, opts store.FindOptions) ([]*domain.Task, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, store.NewStoreError("task", "find", "failed to build filter", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, wrapFailure("task", "find", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, wrapFailure("task", "find", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapFailure("task", "find", err)
	}
	return tasks, nil
}

// Count implements store.TaskStore.
func (s *PostgresTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return 0, store.NewStoreError("task", "count", "failed to build filter", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count tasks", slog.String("error", err.Error()))
		return 0, wrapFailure("task", "count", err)
	}
	return n, nil
}

// CountBy implements store.TaskStore.
func (s *PostgresTaskStore) CountBy(ctx context.Context, key store.GroupKey, filter store.TaskFilter) ([]store.GroupCount, error) {
	var column string
	switch key {
	case store.GroupByStatus:
		column = "status"
	case store.GroupByPriority:
		column = "priority"
	default:
		return nil, store.NewStoreError("task", "count_by", "unsupported group key", fmt.Errorf("%q", key))
	}

	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, store.NewStoreError("task", "count_by", "failed to build filter", err)
	}

	query := `SELECT ` + column + `, COUNT(*) FROM tasks` + where + ` GROUP BY ` + column + ` ORDER BY ` + column
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to group tasks",
			slog.String("key", string(key)),
			slog.String("error", err.Error()))
		return nil, wrapFailure("task", "count_by", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make([]store.GroupCount, 0)
	for rows.Next() {
		var gc store.GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, wrapFailure("task", "count_by", err)
		}
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapFailure("task", "count_by", err)
	}
	return counts, nil
}

// Update implements store.TaskStore. The row is locked with SELECT ... FOR
// UPDATE for the duration of mutate, so concurrent updates serialize.
func (s *PostgresTaskStore) Update(ctx context.Context, id uuid.UUID, mutate store.MutateFn) (*domain.Task, error) {
	var updated *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		task, err := s.getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := mutate(task); err != nil {
			return err
		}
		if err := task.Validate(); err != nil {
			return store.NewStoreError("task", "update", "invalid task", errors.Join(store.ErrInvalidEntity, err))
		}

		row, err := toTaskRow(task)
		if err != nil {
			return store.NewStoreError("task", "update", "failed to encode task", err)
		}
		result, err := tx.ExecContext(ctx, `UPDATE tasks SET
				title = $2, description = $3, priority = $4, status = $5, due_date = $6,
				created_by = $7, assigned_to = $8, todo_checklist = $9, progress = $10,
				attachments = $11, created_at = $12, updated_at = $13
			WHERE id = $1`, row.args()...)
		if err != nil {
			return wrapFailure("task", "update", err)
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated", slog.String("task_id", id.String()))
	return updated, nil
}

// Delete implements store.TaskStore.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx,
		`DELETE FROM tasks WHERE id = $1 RETURNING `+taskColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, wrapFailure("task", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted", slog.String("task_id", id.String()))
	return task, nil
}

// taskRow is the column encoding of a task.
type taskRow struct {
	task        *domain.Task
	assignedTo  []byte
	checklist   []byte
	attachments []byte
}

func toTaskRow(task *domain.Task) (*taskRow, error) {
	assignedTo, err := json.Marshal(nonNil(task.AssignedTo))
	if err != nil {
		return nil, err
	}
	checklist, err := json.Marshal(nonNil(task.Checklist))
	if err != nil {
		return nil, err
	}
	attachments, err := json.Marshal(nonNil(task.Attachments))
	if err != nil {
		return nil, err
	}
	return &taskRow{task: task, assignedTo: assignedTo, checklist: checklist, attachments: attachments}, nil
}

// args returns the values in taskColumns order.
func (r *taskRow) args() []any {
	t := r.task
	return []any{
		t.ID, t.Title, t.Description, string(t.Priority), string(t.Status), t.DueDate, t.CreatedBy,
		string(r.assignedTo), string(r.checklist), t.Progress, string(r.attachments), t.CreatedAt, t.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                               domain.Task
		priority, status                   string
		assignedTo, checklist, attachments []byte
	)
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &priority, &status, &task.DueDate, &task.CreatedBy,
		&assignedTo, &checklist, &task.Progress, &attachments, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Priority = domain.Priority(priority)
	task.Status = domain.TaskStatus(status)

	if err := json.Unmarshal(assignedTo, &task.AssignedTo); err != nil {
		return nil, fmt.Errorf("decode assigned_to: %w", err)
	}
	if err := json.Unmarshal(checklist, &task.Checklist); err != nil {
		return nil, fmt.Errorf("decode todo_checklist: %w", err)
	}
	if err := json.Unmarshal(attachments, &task.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	task.Checklist = nonNil(task.Checklist)
	task.Attachments = nonNil(task.Attachments)
	task.DueDate = task.DueDate.UTC()
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

// buildWhere renders filter as a WHERE clause with positional arguments.
func buildWhere(filter store.TaskFilter) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.ExcludeStatus != "" {
		add("status <> $%d", string(filter.ExcludeStatus))
	}
	if filter.AssignedTo != uuid.Nil {
		contains, err := json.Marshal([]uuid.UUID{filter.AssignedTo})
		if err != nil {
			return "", nil, err
		}
		add("assigned_to @> $%d::jsonb", string(contains))
	}
	if !filter.DueBefore.IsZero() {
		add("due_date < $%d", filter.DueBefore)
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
