package sos

import "context"

// Store is the persistence interface for SOS alerts.
// List returns alerts in insertion order; the Coordinator applies display
// ordering on top.
type Store interface {
	Get(ctx context.Context, id string) (*Alert, bool, error)
	List(ctx context.Context) ([]Alert, error)
	Put(ctx context.Context, a *Alert) error
}
