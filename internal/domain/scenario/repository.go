package scenario

import "context"

// Store is the port for persisting scenario documents by storage key.
// Failures are *Error values tagged with a Kind.
type Store interface {
	// List returns the storage keys present, in the backend's order.
	// An empty or missing directory yields an empty slice.
	List(ctx context.Context) ([]string, error)

	// Get decodes and migrates the document stored under key.
	// Returns ErrNotFound if key is absent and ErrMalformedDocument if the
	// stored bytes cannot be decoded.
	Get(ctx context.Context, key string) (*Document, error)

	// Put creates or replaces the document under key, using the current
	// revision as a precondition when the key exists. Returns ErrConflict
	// if the record changed between the revision fetch and the write.
	Put(ctx context.Context, key string, doc *Document) error

	// Delete removes the document under key. Returns ErrNotFound if it is
	// already absent and ErrConflict if it changed concurrently.
	Delete(ctx context.Context, key string) error
}
