// Package incident tracks incident records through their
// pending -> in-progress -> resolved lifecycle. It defines the Incident
// model, the Store interface (persistence), and the Registry, which owns all
// status and assignment mutation.
package incident

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/unilert/internal/notify"
)

// ErrNotFound means the incident id is unknown.
var ErrNotFound = xerrors.New("incident not found")

// ErrResolved means the incident is terminal and accepts no further assignment.
var ErrResolved = xerrors.New("incident already resolved")

// ErrInvalidTransition means the requested status change is not permitted.
var ErrInvalidTransition = xerrors.New("invalid status transition")

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status   Status
	Priority Priority
}

// Registry owns incident lifecycle mutation and query.
type Registry struct {
	mu       sync.Mutex
	store    Store
	logger   log.Logger
	metrics  *Metrics
	notifier notify.Notifier
}

// NewRegistry creates a registry over the given store. Metrics and notifier
// may be nil.
func NewRegistry(store Store, logger log.Logger, metrics *Metrics, notifier notify.Notifier) *Registry {
	if logger == nil {
		logger = log.Nop()
	}
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Registry{store: store, logger: logger, metrics: metrics, notifier: notifier}
}

// Report ingests a new incident. It enters the registry pending with no
// officers attached; a missing report time is stamped with the current time.
func (r *Registry) Report(ctx context.Context, n NewIncident) (*Incident, error) {
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if n.ReportedAt.IsZero() {
		n.ReportedAt = time.Now()
	}

	inc := &Incident{
		ID:               ulid.Make().String(),
		Type:             n.Type,
		Description:      n.Description,
		Location:         n.Location,
		Coordinates:      n.Coordinates,
		Status:           StatusPending,
		Priority:         n.Priority,
		ReportedBy:       n.ReportedBy,
		AssignedOfficers: []AssignedOfficer{},
		ReportedAt:       n.ReportedAt,
	}

	if err := r.store.Put(ctx, inc); err != nil {
		return nil, fmt.Errorf("store incident: %w", err)
	}

	if r.metrics != nil {
		r.metrics.ReportsTotal.Inc()
	}
	r.logger.Info(ctx, "incident reported",
		"incident", inc.ID,
		"type", inc.Type,
		"priority", string(inc.Priority),
	)
	return inc, nil
}

// Get retrieves an incident by id.
func (r *Registry) Get(ctx context.Context, id string) (*Incident, error) {
	inc, ok, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("incident %s: %w", id, ErrNotFound)
	}
	return inc, nil
}

// List returns incidents matching the filter, newest report first. Records
// with a missing report time sort last; ties keep insertion order.
func (r *Registry) List(ctx context.Context, f Filter) ([]Incident, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Incident, 0, len(all))
	for _, inc := range all {
		if f.Status != "" && inc.Status != f.Status {
			continue
		}
		if f.Priority != "" && inc.Priority != f.Priority {
			continue
		}
		out = append(out, inc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].ReportedAt, out[j].ReportedAt
		if ti.IsZero() || tj.IsZero() {
			return !ti.IsZero() && tj.IsZero()
		}
		return ti.After(tj)
	})
	return out, nil
}

// SetStatus transitions an incident. Moving out of resolved is never
// permitted, and an incident with officers attached cannot go back to
// pending. Resolving does not release assigned officers: the roster keeps
// them on scene until explicitly reassigned.
func (r *Registry) SetStatus(ctx context.Context, id string, status Status) (*Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inc, ok, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("incident %s: %w", id, ErrNotFound)
	}
	if inc.Status == StatusResolved {
		return nil, fmt.Errorf("incident %s is terminal: %w", id, ErrInvalidTransition)
	}
	if status == StatusPending && len(inc.AssignedOfficers) > 0 {
		return nil, fmt.Errorf("incident %s has %d officers attached: %w", id, len(inc.AssignedOfficers), ErrInvalidTransition)
	}

	inc.Status = status
	if err := r.store.Put(ctx, inc); err != nil {
		return nil, fmt.Errorf("store incident: %w", err)
	}

	if r.metrics != nil {
		r.metrics.TransitionsTotal.WithLabelValues(string(status)).Inc()
	}
	r.logger.Info(ctx, "incident status changed", "incident", id, "status", string(status))

	_ = r.notifier.Send(ctx, notify.Event{
		Kind:     notify.KindIncidentStatus,
		EntityID: inc.ID,
		Summary:  "Incident at " + inc.Location + " is now " + string(status),
		Severity: string(inc.Priority),
		At:       time.Now().UTC(),
		Fields: map[string]string{
			"status": string(status),
		},
	})

	return inc, nil
}

// AttachOfficers appends officer snapshots to an incident. A pending
// incident moves to in-progress; a resolved incident rejects the attachment.
func (r *Registry) AttachOfficers(ctx context.Context, id string, refs []AssignedOfficer) (*Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inc, ok, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("incident %s: %w", id, ErrNotFound)
	}
	if inc.Status == StatusResolved {
		return nil, fmt.Errorf("incident %s: %w", id, ErrResolved)
	}

	inc.AssignedOfficers = append(inc.AssignedOfficers, refs...)
	if inc.Status == StatusPending {
		inc.Status = StatusInProgress
	}

	if err := r.store.Put(ctx, inc); err != nil {
		return nil, fmt.Errorf("store incident: %w", err)
	}

	r.logger.Info(ctx, "officers attached", "incident", id, "count", len(refs))
	return inc, nil
}
