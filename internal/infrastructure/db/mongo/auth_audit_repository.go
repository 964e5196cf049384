package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/todoapp/todo-service/internal/core/ports"
)

const authEventsCollection = "auth_events"

// AuthAuditRepository implements ports.AuthAuditor using MongoDB.
type AuthAuditRepository struct {
	col *mongo.Collection
}

// NewAuthAuditRepository creates a new AuthAuditRepository.
func NewAuthAuditRepository(db *mongo.Database) *AuthAuditRepository {
	return &AuthAuditRepository{col: db.Collection(authEventsCollection)}
}

// Record persists an authentication event to the auth_events collection.
func (r *AuthAuditRepository) Record(ctx context.Context, event ports.AuthEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	doc := bson.M{
		"type":        string(event.Type),
		"username":    event.Username,
		"success":     event.Success,
		"occurred_at": occurredAt.UTC(),
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
	}
	if event.Reason != "" {
		doc["reason"] = event.Reason
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes creates the lookup indexes on the auth_events collection.
func (r *AuthAuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "occurred_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
