package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

const auditCollection = "audit_log"

// MongoAuditRepository appends audit entries. Write-only from the service's
// point of view; operators read the collection directly.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEntry struct {
	Actor      string `bson:"actor"`
	Action     string `bson:"action"`
	Collection string `bson:"collection,omitempty"`
	DocumentID string `bson:"document_id,omitempty"`
	Decision   string `bson:"decision"`
	Timestamp  int64  `bson:"timestamp"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	doc := mongoAuditEntry{
		Actor:      entry.Actor,
		Action:     entry.Action,
		Collection: entry.Collection,
		DocumentID: entry.DocumentID,
		Decision:   entry.Decision,
		Timestamp:  entry.Timestamp.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
