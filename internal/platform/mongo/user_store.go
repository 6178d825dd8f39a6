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

type userDocument struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Email           string    `bson:"email"`
	HashedPassword  string    `bson:"hashed_password"`
	ProfileImageURL string    `bson:"profile_image_url"`
	Role            string    `bson:"role"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:              u.ID.String(),
		Name:            u.Name,
		Email:           u.Email,
		HashedPassword:  u.HashedPassword,
		ProfileImageURL: u.ProfileImageURL,
		Role:            string(u.Role),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode _id: %w", err)
	}
	return &domain.User{
		ID:              id,
		Name:            d.Name,
		Email:           d.Email,
		HashedPassword:  d.HashedPassword,
		ProfileImageURL: d.ProfileImageURL,
		Role:            domain.Role(d.Role),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}, nil
}

// UserStore implements store.UserStore on a MongoDB collection. Email
// uniqueness is enforced by the index created in EnsureIndexes.
type UserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore over the users collection of db.
func NewUserStore(db *mongo.Database, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		coll:   db.Collection(UsersCollection),
		logger: logger.With(slog.String("component", "mongo_user_store")),
	}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "invalid user", errors.Join(store.ErrInvalidEntity, err))
	}
	user.Password = ""

	if _, err := s.coll.InsertOne(ctx, newUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrEmailExists
		}
		return s.failure(ctx, "create", err)
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.findOne(ctx, "get", bson.M{"_id": id.String()})
}

// GetByEmail implements store.UserStore.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "get_by_email", bson.M{"email": domain.NormalizeEmail(email)})
}

func (s *UserStore) findOne(ctx context.Context, op string, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, s.failure(ctx, op, err)
	}
	user, err := doc.toDomain()
	if err != nil {
		return nil, store.NewStoreError("user", op, "corrupt user document", err)
	}
	return user, nil
}

// FindByIDs implements store.UserStore.
func (s *UserStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	ids = domain.DedupeIDs(ids)
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	return s.find(ctx, "find_by_ids", bson.M{"_id": bson.M{"$in": raw}})
}

// List implements store.UserStore.
func (s *UserStore) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = string(role)
	}
	return s.find(ctx, "list", filter)
}

func (s *UserStore) find(ctx context.Context, op string, filter bson.M) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, s.failure(ctx, op, err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, s.failure(ctx, op, err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		user, err := doc.toDomain()
		if err != nil {
			return nil, store.NewStoreError("user", op, "corrupt user document", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// Update implements store.UserStore.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "update", "invalid user", errors.Join(store.ErrInvalidEntity, err))
	}

	update := bson.M{"$set": bson.M{
		"name":              user.Name,
		"email":             user.Email,
		"hashed_password":   user.HashedPassword,
		"profile_image_url": user.ProfileImageURL,
		"role":              string(user.Role),
		"updated_at":        user.UpdatedAt,
	}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": user.ID.String()}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrEmailExists
		}
		return s.failure(ctx, "update", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	user.Password = ""
	return nil
}

func (s *UserStore) failure(ctx context.Context, op string, err error) error {
	mapped := wrapFailure("user", op, store.ErrUserNotFound, err)
	if !store.IsNotFoundError(mapped) {
		logger.FromContextOrDefault(ctx, s.logger).Error("user query failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
	return mapped
}
