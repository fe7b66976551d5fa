package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoActivityDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain string             `bson:"shopDomain"`
	Action     string             `bson:"action"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// MongoActivityLogRepository implements ActivityLogRepository using MongoDB.
// The log is append-only: no updates, and deletes only via Purge.
type MongoActivityLogRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityLogRepository creates a new MongoDB activity log repository.
func NewMongoActivityLogRepository(db *mongo.Database) ports.ActivityLogRepository {
	return &MongoActivityLogRepository{collection: db.Collection("activity_logs")}
}

// Append records an action for a shop.
func (r *MongoActivityLogRepository) Append(ctx context.Context, shopDomain string, action string) error {
	doc := mongoActivityDoc{
		ID:         primitive.NewObjectID(),
		ShopDomain: shopDomain,
		Action:     action,
		CreatedAt:  time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	return nil
}

// ListByShop returns activity entries for a shop, newest first.
func (r *MongoActivityLogRepository) ListByShop(ctx context.Context, shopDomain string) ([]*domain.ActivityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"shopDomain": shopDomain}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*domain.ActivityLog
	for cursor.Next(ctx) {
		var doc mongoActivityDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode activity log: %w", err)
		}
		logs = append(logs, &domain.ActivityLog{
			ID:         doc.ID.Hex(),
			ShopDomain: doc.ShopDomain,
			Action:     doc.Action,
			CreatedAt:  doc.CreatedAt,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return logs, nil
}

// Purge removes all activity entries for a shop.
func (r *MongoActivityLogRepository) Purge(ctx context.Context, shopDomain string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"shopDomain": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to purge activity logs: %w", err)
	}
	return nil
}
