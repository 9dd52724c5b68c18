package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrAlreadyExists   = errors.New("document already exists")
	ErrVersionMismatch = errors.New("document version mismatch")
)

// AnyVersion disables the version check on Update.
const AnyVersion int64 = -1

// Filter selects documents by top-level field value. A scalar value
// matches by equality; a []string matches by set membership. The store
// offers nothing richer: anything beyond that is the caller's problem.
type Filter map[string]any

// Store is the document-database boundary. No cross-document
// transactions, no atomic increments; the only concurrency primitive is
// the per-document version compared by a conditional Update.
type Store interface {
	Create(ctx context.Context, collection, id string, doc any) error
	// Get unmarshals the document into out and returns its current version.
	Get(ctx context.Context, collection, id string, out any) (int64, error)
	// Update replaces the document body. If expectedVersion is not
	// AnyVersion and the stored version differs, it fails with
	// ErrVersionMismatch and writes nothing.
	Update(ctx context.Context, collection, id string, doc any, expectedVersion int64) error
	Delete(ctx context.Context, collection, id string) error
	// List unmarshals every matching document into out, which must be a
	// pointer to a slice. Iteration order is unspecified.
	List(ctx context.Context, collection string, filter Filter, out any) error
}
