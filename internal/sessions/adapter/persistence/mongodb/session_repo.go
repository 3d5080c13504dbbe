package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"session-studio/internal/sessions/domain/model"
	"session-studio/internal/sessions/domain/repository"
	apperrors "session-studio/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionRepository implements SessionRepository on a MongoDB collection.
// Every write is a single-document operation, so the store's own atomicity is
// the only serialization between racing saves for the same id.
type MongoSessionRepository struct {
	db                 *mongo.Database
	sessionsCollection *mongo.Collection
}

// NewMongoSessionRepository creates the repository and ensures the owner and
// status indexes exist.
func NewMongoSessionRepository(db *mongo.Database) (*MongoSessionRepository, error) {
	repo := &MongoSessionRepository{
		db:                 db,
		sessionsCollection: db.Collection("sessions"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	if _, err := repo.sessionsCollection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create session indexes: %w", err)
	}

	return repo, nil
}

// Create inserts a new session document with a server-generated id.
func (r *MongoSessionRepository) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	if session == nil {
		return nil, errors.New("session cannot be nil")
	}

	now := time.Now()
	session.ID = primitive.NewObjectID().Hex()
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := r.sessionsCollection.InsertOne(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// FindByIDAndOwner returns the session only when it exists and belongs to
// ownerID. Both a missing id and a foreign owner surface ErrSessionNotFound.
func (r *MongoSessionRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Session, error) {
	if id == "" || ownerID == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	var session model.Session
	err := r.sessionsCollection.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

// UpdateByIDAndOwner applies the supplied fields atomically with a refreshed
// updated_at and returns the document as persisted. The filter includes the
// owner, so a non-owner update matches nothing and reports not found.
func (r *MongoSessionRepository) UpdateByIDAndOwner(ctx context.Context, id, ownerID string, update repository.SessionUpdate) (*model.Session, error) {
	if id == "" || ownerID == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	set := bson.M{"updated_at": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.JSONFileURL != nil {
		set["json_file_url"] = *update.JSONFileURL
	}
	if update.Duration != nil {
		set["duration"] = *update.Duration
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session model.Session
	err := r.sessionsCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": set},
		opts,
	).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

// ListByOwner returns all sessions owned by ownerID, newest first.
func (r *MongoSessionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.sessionsCollection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := make([]*model.Session, 0)
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

// ListPublished returns every published session, newest first.
func (r *MongoSessionRepository) ListPublished(ctx context.Context) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.sessionsCollection.Find(ctx, bson.M{"status": model.StatusPublished}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list published sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := make([]*model.Session, 0)
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

// Ensure the mongo adapter satisfies the domain contract
var _ repository.SessionRepository = (*MongoSessionRepository)(nil)
