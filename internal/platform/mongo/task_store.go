package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

type checklistDocument struct {
	Text      string `bson:"text"`
	Completed bool   `bson:"completed"`
}

type taskDocument struct {
	ID          string              `bson:"_id"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	Priority    string              `bson:"priority"`
	Status      string              `bson:"status"`
	DueDate     time.Time           `bson:"due_date"`
	CreatedBy   string              `bson:"created_by"`
	AssignedTo  []string            `bson:"assigned_to"`
	Checklist   []checklistDocument `bson:"todo_checklist"`
	Progress    int                 `bson:"progress"`
	Attachments []string            `bson:"attachments"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

func newTaskDocument(t *domain.Task) taskDocument {
	doc := taskDocument{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy.String(),
		AssignedTo:  make([]string, len(t.AssignedTo)),
		Checklist:   make([]checklistDocument, len(t.Checklist)),
		Progress:    t.Progress,
		Attachments: append([]string{}, t.Attachments...),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for i, id := range t.AssignedTo {
		doc.AssignedTo[i] = id.String()
	}
	for i, item := range t.Checklist {
		doc.Checklist[i] = checklistDocument{Text: item.Text, Completed: item.Completed}
	}
	return doc
}

func (d taskDocument) toDomain() (*domain.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode _id: %w", err)
	}
	createdBy, err := uuid.Parse(d.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("decode created_by: %w", err)
	}
	task := &domain.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Priority:    domain.Priority(d.Priority),
		Status:      domain.TaskStatus(d.Status),
		DueDate:     d.DueDate.UTC(),
		CreatedBy:   createdBy,
		AssignedTo:  make([]uuid.UUID, 0, len(d.AssignedTo)),
		Checklist:   make([]domain.ChecklistItem, len(d.Checklist)),
		Progress:    d.Progress,
		Attachments: append([]string{}, d.Attachments...),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	for _, raw := range d.AssignedTo {
		assignee, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("decode assigned_to: %w", err)
		}
		task.AssignedTo = append(task.AssignedTo, assignee)
	}
	for i, item := range d.Checklist {
		task.Checklist[i] = domain.ChecklistItem{Text: item.Text, Completed: item.Completed}
	}
	return task, nil
}

// decodeTask converts doc, reporting a malformed document as a StoreError.
func decodeTask(op string, doc taskDocument) (*domain.Task, error) {
	task, err := doc.toDomain()
	if err != nil {
		return nil, store.NewStoreError("task", op, "corrupt task document", err)
	}
	return task, nil
}

// taskFilterDocument renders filter as a query document.
func taskFilterDocument(filter store.TaskFilter) bson.M {
	doc := bson.M{}

	status := bson.M{}
	if filter.Status != "" {
		status["$eq"] = string(filter.Status)
	}
	if filter.ExcludeStatus != "" {
		status["$ne"] = string(filter.ExcludeStatus)
	}
	if len(status) > 0 {
		doc["status"] = status
	}
	if filter.AssignedTo != uuid.Nil {
		doc["assigned_to"] = filter.AssignedTo.String()
	}
	if !filter.DueBefore.IsZero() {
		doc["due_date"] = bson.M{"$lt": filter.DueBefore}
	}
	return doc
}

// TaskStore implements store.TaskStore on a MongoDB collection. Update is
// find then replace; concurrent updates to one task resolve as last write wins.
type TaskStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore over the tasks collection of db.
func NewTaskStore(db *mongo.Database, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		coll:   db.Collection(TasksCollection),
		logger: logger.With(slog.String("component", "mongo_task_store")),
	}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return store.NewStoreError("task", "create", "invalid task", errors.Join(store.ErrInvalidEntity, err))
	}
	if _, err := s.coll.InsertOne(ctx, newTaskDocument(task)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return wrapFailure("task", "create", store.ErrTaskNotFound, err)
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, s.failure(ctx, "get", err)
	}
	return decodeTask("get", doc)
}

// Find implements store.TaskStore.
func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter, opts store.FindOptions) ([]*domain.Task, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := s.coll.Find(ctx, taskFilterDocument(filter), findOpts)
	if err != nil {
		return nil, s.failure(ctx, "find", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, s.failure(ctx, "find", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := decodeTask("find", doc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Count implements store.TaskStore.
func (s *TaskStore) Count(ctx context.Context, filter store.TaskFilter) (int, error) {
	n, err := s.coll.CountDocuments(ctx, taskFilterDocument(filter))
	if err != nil {
		return 0, s.failure(ctx, "count", err)
	}
	return int(n), nil
}

// CountBy implements store.TaskStore with a $group aggregation.
func (s *TaskStore) CountBy(ctx context.Context, key store.GroupKey, filter store.TaskFilter) ([]store.GroupCount, error) {
	var field string
	switch key {
	case store.GroupByStatus:
		field = "$status"
	case store.GroupByPriority:
		field = "$priority"
	default:
		return nil, store.NewStoreError("task", "count_by", "unsupported group key", fmt.Errorf("%q", key))
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: taskFilterDocument(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, s.failure(ctx, "count_by", err)
	}

	var rows []struct {
		Key   string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, s.failure(ctx, "count_by", err)
	}

	counts := make([]store.GroupCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, store.GroupCount{Key: r.Key, Count: r.Count})
	}
	return counts, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, mutate store.MutateFn) (*domain.Task, error) {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(task); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, store.NewStoreError("task", "update", "invalid task", errors.Join(store.ErrInvalidEntity, err))
	}

	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id.String()}, newTaskDocument(task))
	if err != nil {
		return nil, s.failure(ctx, "update", err)
	}
	if result.MatchedCount == 0 {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, s.failure(ctx, "delete", err)
	}
	return decodeTask("delete", doc)
}

func (s *TaskStore) failure(ctx context.Context, op string, err error) error {
	mapped := wrapFailure("task", op, store.ErrTaskNotFound, err)
	if !store.IsNotFoundError(mapped) {
		logger.FromContextOrDefault(ctx, s.logger).Error("task query failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
	return mapped
}
