package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

// MongoDocumentRepository stores the guarded application documents (parents,
// analytics). Access control happens entirely in the rule engine before any
// call lands here.
type MongoDocumentRepository struct {
	db *mongo.Database
}

func NewDocumentRepository(db *mongo.Database) *MongoDocumentRepository {
	return &MongoDocumentRepository{db: db}
}

func (r *MongoDocumentRepository) Get(ctx context.Context, collection, id string) (ports.Document, error) {
	var doc bson.M
	if err := r.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}

	delete(doc, "_id")
	return ports.Document(doc), nil
}

func (r *MongoDocumentRepository) Put(ctx context.Context, collection, id string, doc ports.Document) error {
	stored := make(bson.M, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored["_id"] = id

	opts := options.Replace().SetUpsert(true)
	if _, err := r.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, stored, opts); err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

func (r *MongoDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
