package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
)

const auditCollection = "user_audit"

// AuditRepository implements ports.AuditRepository as an append-only
// collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Action         string             `bson:"action"`
	ActorID        string             `bson:"actor_id"`
	ActorUsername  string             `bson:"actor_username"`
	TargetID       string             `bson:"target_id"`
	TargetUsername string             `bson:"target_username"`
	Detail         string             `bson:"detail,omitempty"`
	OccurredAt     time.Time          `bson:"occurred_at"`
}

// Record inserts entry and sets its ID.
func (r *AuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	occurred := entry.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	doc := auditDocument{
		ID:             primitive.NewObjectID(),
		Action:         string(entry.Action),
		ActorID:        entry.ActorID,
		ActorUsername:  entry.ActorUsername,
		TargetID:       entry.TargetID,
		TargetUsername: entry.TargetUsername,
		Detail:         entry.Detail,
		OccurredAt:     occurred.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	entry.ID = doc.ID.Hex()
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}

	entries := make([]*domain.AuditEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, &domain.AuditEntry{
			ID:             d.ID.Hex(),
			Action:         domain.AuditAction(d.Action),
			ActorID:        d.ActorID,
			ActorUsername:  d.ActorUsername,
			TargetID:       d.TargetID,
			TargetUsername: d.TargetUsername,
			Detail:         d.Detail,
			OccurredAt:     d.OccurredAt.UTC(),
		})
	}
	return entries, nil
}

// EnsureIndexes indexes occurred_at for the newest-first listing.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "occurred_at", Value: -1}},
	})
	return err
}
