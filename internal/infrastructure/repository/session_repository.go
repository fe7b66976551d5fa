package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/repository/entity"
	"github.com/ahmedy940/dropx-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionRepository implements SessionRepository using MongoDB.
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoDB session repository.
func NewMongoSessionRepository(db *mongo.Database) ports.SessionRepository {
	repo := &MongoSessionRepository{collection: db.Collection("sessions")}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shopDomain", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = repo.collection.Indexes().CreateOne(context.Background(), indexModel)

	return repo
}

// Upsert saves or updates a session keyed by shop domain. Replaying the same
// install rewrites token and timestamps but never creates a duplicate row.
func (r *MongoSessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	doc := entity.MongoSessionDocFromDomain(session)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"shopDomain": session.ShopDomain}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	return nil
}

// GetByDomain retrieves the active session for a shop.
func (r *MongoSessionRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Session, error) {
	var doc entity.MongoSessionDoc
	err := r.collection.FindOne(ctx, bson.M{"shopDomain": shopDomain}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return doc.ToDomain(), nil
}

// Delete removes the session for a shop, e.g. on uninstall.
func (r *MongoSessionRepository) Delete(ctx context.Context, shopDomain string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"shopDomain": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
