package roster

import "context"

// Store is the persistence interface for the officer roster.
// Implementations must be safe for concurrent use; the Registry provides
// the check-and-set serialization on top.
type Store interface {
	Get(ctx context.Context, id string) (*Officer, bool, error)
	List(ctx context.Context) ([]Officer, error)
	Put(ctx context.Context, o *Officer) error

	// PutBatch persists all officers or none of them.
	PutBatch(ctx context.Context, officers []Officer) error
}
