// Package roster is the single source of truth for officer availability.
// It defines the Officer model, the Store interface (persistence), and the
// Registry, which serializes every assignment so two concurrent dispatches
// can never take the same officer.
package roster

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
)

// ErrUnknownOfficer means the officer id is not in the roster.
var ErrUnknownOfficer = xerrors.New("unknown officer")

// NotAvailableError reports which officers in a batch could not be assigned.
// It is an expected outcome of racing dispatches, not a system fault.
type NotAvailableError struct {
	IDs []string
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("officers not available: %s", strings.Join(e.IDs, ", "))
}

// Registry owns all officer state mutation. The roster is fixed for the
// session: officers are seeded once and never destroyed.
type Registry struct {
	mu     sync.Mutex
	store  Store
	logger log.Logger
}

// NewRegistry creates a registry over the given store.
func NewRegistry(store Store, logger log.Logger) *Registry {
	if logger == nil {
		logger = log.Nop()
	}
	return &Registry{store: store, logger: logger}
}

// Seed loads the bootstrap roster. Officers with no status default to available.
func (r *Registry) Seed(ctx context.Context, officers []Officer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seeded := make([]Officer, len(officers))
	for i, o := range officers {
		if o.Status == "" {
			o.Status = StatusAvailable
		}
		seeded[i] = o
	}
	if err := r.store.PutBatch(ctx, seeded); err != nil {
		return fmt.Errorf("seed roster: %w", err)
	}
	r.logger.Info(ctx, "roster seeded", "officers", len(seeded))
	return nil
}

// Get retrieves a single officer.
func (r *Registry) Get(ctx context.Context, id string) (*Officer, bool, error) {
	return r.store.Get(ctx, id)
}

// List returns the roster in insertion order, optionally filtered by status.
func (r *Registry) List(ctx context.Context, status Status) ([]Officer, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	filtered := all[:0]
	for _, o := range all {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// ListAvailable returns officers free for dispatch. No side effects.
func (r *Registry) ListAvailable(ctx context.Context) ([]Officer, error) {
	return r.List(ctx, StatusAvailable)
}

// MarkAssigned moves a batch of officers to assigned, bound for destination.
// All-or-nothing: if any officer in the batch is not available (or unknown,
// or repeated within the batch), no officer is mutated and the returned
// *NotAvailableError carries the failed ids. On success it returns
// post-assignment snapshots in request order.
func (r *Registry) MarkAssigned(ctx context.Context, ids []string, destination string) ([]Officer, error) {
	return r.assign(ctx, ids, destination, StatusAssigned)
}

// MarkResponding assigns a single officer to an emergency, with the stricter
// responding status. Same availability precondition as MarkAssigned.
func (r *Registry) MarkResponding(ctx context.Context, id string, destination string) (*Officer, error) {
	assigned, err := r.assign(ctx, []string{id}, destination, StatusResponding)
	if err != nil {
		return nil, err
	}
	return &assigned[0], nil
}

func (r *Registry) assign(ctx context.Context, ids []string, destination string, status Status) ([]Officer, error) {
	// serialize the check-and-set: this is the one true race in the system
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]Officer, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	var failed []string
	for _, id := range ids {
		// a repeated id would assign the same officer twice through one batch
		if seen[id] {
			failed = append(failed, id)
			continue
		}
		seen[id] = true
		o, ok, err := r.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lookup officer %s: %w", id, err)
		}
		if !ok || o.Status != StatusAvailable {
			failed = append(failed, id)
			continue
		}
		o.Status = status
		o.Location = "En route to " + destination
		updated = append(updated, *o)
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return nil, &NotAvailableError{IDs: failed}
	}

	if err := r.store.PutBatch(ctx, updated); err != nil {
		return nil, fmt.Errorf("assign officers: %w", err)
	}

	r.logger.Info(ctx, "officers assigned",
		"officers", ids,
		"status", string(status),
		"destination", destination,
	)
	return updated, nil
}

// Release returns an officer to available. Releasing an already-available
// officer is a no-op, not an error; an unknown id fails with ErrUnknownOfficer.
func (r *Registry) Release(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok, err := r.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup officer %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("release %s: %w", id, ErrUnknownOfficer)
	}
	if o.Status == StatusAvailable {
		return nil
	}

	o.Status = StatusAvailable
	if err := r.store.Put(ctx, o); err != nil {
		return fmt.Errorf("release officer %s: %w", id, err)
	}

	r.logger.Info(ctx, "officer released", "officer", id)
	return nil
}
