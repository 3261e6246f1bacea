package incident

import "context"

// Store is the persistence interface for incident records.
// List returns incidents in insertion order; the Registry applies display
// ordering on top.
type Store interface {
	Get(ctx context.Context, id string) (*Incident, bool, error)
	List(ctx context.Context) ([]Incident, error)
	Put(ctx context.Context, inc *Incident) error
}
