// Package docstore defines collection-level CRUD over named document
// collections. It carries no tenant lifecycle knowledge; the directories
// built on top of it own that.
package docstore

import (
	"context"
	"errors"
)

// Errors
var (
	ErrNoDocuments  = errors.New("no documents matched")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Document is a schemaless record. Filters and updates are plain equality
// matches / field sets over top-level keys.
type Document = map[string]any

// DocumentStore provides create/read/update/delete/drop over named
// collections.
//
// Uniqueness declared via EnsureUniqueIndex is enforced by the store itself,
// so racing inserts of the same key are rejected with ErrDuplicateKey even
// when a caller's check-then-act sequence misses the conflict.
type DocumentStore interface {
	// CreateCollection creates a named collection. Creating a collection
	// that already exists is a no-op.
	CreateCollection(ctx context.Context, name string) error

	// DropCollection removes a collection and all its documents. Dropping
	// an absent collection is a no-op.
	DropCollection(ctx context.Context, name string) error

	// CollectionExists reports whether a collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// EnsureUniqueIndex enforces uniqueness of a top-level field across a
	// collection. Idempotent.
	EnsureUniqueIndex(ctx context.Context, collection, field string) error

	// InsertOne adds a document. Returns ErrDuplicateKey if a unique index
	// rejects it.
	InsertOne(ctx context.Context, collection string, doc Document) error

	// InsertMany adds documents in order, stopping at the first failure.
	InsertMany(ctx context.Context, collection string, docs []Document) error

	// FindOne returns the first document matching filter, or ErrNoDocuments.
	FindOne(ctx context.Context, collection string, filter Document) (Document, error)

	// Find returns a snapshot of every document matching filter. A nil or
	// empty filter matches everything.
	Find(ctx context.Context, collection string, filter Document) ([]Document, error)

	// UpdateOne sets fields on the first document matching filter. Reports
	// whether a document was modified.
	UpdateOne(ctx context.Context, collection string, filter, set Document) (bool, error)

	// DeleteOne removes the first document matching filter. Reports whether
	// a document was removed.
	DeleteOne(ctx context.Context, collection string, filter Document) (bool, error)

	// DeleteMany removes every document matching filter and returns the
	// count removed. Zero matches is not an error.
	DeleteMany(ctx context.Context, collection string, filter Document) (int64, error)
}

// Matches reports whether doc satisfies an equality filter over top-level
// fields. Shared by the in-memory store and tests.
func Matches(doc, filter Document) bool {
	for k, want := range filter {
		if doc[k] != want {
			return false
		}
	}
	return true
}
