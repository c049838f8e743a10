package ports

import "context"

// Document is an opaque stored document body.
type Document map[string]any

// DocumentRepository defines the interface for the generic guarded document
// collections (parents, analytics). The rule engine decides access; this
// layer only persists.
type DocumentRepository interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Put(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
}
