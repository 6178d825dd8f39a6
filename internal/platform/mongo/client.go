package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// Collection names.
const (
	TasksCollection = "tasks"
	UsersCollection = "users"
)

const connectTimeout = 10 * time.Second

// Connect opens a client for uri, verifies it with a ping and returns the
// named database. The returned function disconnects the client.
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*mongo.Database, func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("mongodb connection established",
		slog.String("component", "mongo"),
		slog.String("database", database))
	return client.Database(database), client.Disconnect, nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique email
// index is what turns concurrent duplicate sign-ups into ErrEmailExists.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	_, err = db.Collection(TasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "due_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}

// wrapFailure classifies a driver error. Missing documents and duplicate
// keys map to store sentinels; connectivity failures are marked unavailable.
func wrapFailure(entity, op string, notFound, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return store.NewStoreError(entity, op, "database unreachable", errors.Join(store.ErrUnavailable, err))
	default:
		return store.NewStoreError(entity, op, "database operation failed", err)
	}
}
