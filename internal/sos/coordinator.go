// Package sos coordinates the emergency (panic-button) response workflow:
// alert ingestion from an external feed, dispatch of a single responding
// officer, and resolution that releases the officer back to the roster.
package sos

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
	"github.com/linnemanlabs/unilert/internal/roster"
)

// ErrNotFound means the alert id is unknown.
var ErrNotFound = xerrors.New("sos alert not found")

// ErrResolved means the alert is terminal and cannot be dispatched to.
var ErrResolved = xerrors.New("sos alert already resolved")

// ErrAlreadyResponded means the alert already has a responding officer.
var ErrAlreadyResponded = xerrors.New("sos alert already has a responding officer")

// Coordinator owns SOS alert lifecycle mutation and query.
type Coordinator struct {
	mu       sync.Mutex
	store    Store
	roster   *roster.Registry
	logger   log.Logger
	metrics  *Metrics
	notifier notify.Notifier
}

// NewCoordinator wires the coordinator to its store and the officer roster.
// Metrics and notifier may be nil.
func NewCoordinator(store Store, r *roster.Registry, logger log.Logger, metrics *Metrics, notifier notify.Notifier) *Coordinator {
	if logger == nil {
		logger = log.Nop()
	}
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Coordinator{
		store:    store,
		roster:   r,
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
	}
}

// Ingest appends a new active, unresponded alert from the external feed.
// A missing timestamp is stamped with the current time.
func (c *Coordinator) Ingest(ctx context.Context, n NewAlert) (*Alert, error) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	a := &Alert{
		ID:        ulid.Make().String(),
		UserID:    n.UserID,
		UserName:  n.UserName,
		Timestamp: n.Timestamp,
		Location:  n.Location,
		Status:    StatusActive,
		Responded: false,
	}

	if err := c.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("store alert: %w", err)
	}

	if c.metrics != nil {
		c.metrics.AlertsTotal.WithLabelValues("ingested").Inc()
		c.metrics.ActiveAlerts.Inc()
	}
	c.logger.Info(ctx, "sos alert ingested",
		"alert", a.ID,
		"location", a.Location.Description,
		"anonymous", a.Anonymous(),
	)

	_ = c.notifier.Send(ctx, notify.Event{
		Kind:     notify.KindSOSActive,
		EntityID: a.ID,
		Summary:  "New SOS alert at " + a.Location.Description,
		Severity: "critical",
		At:       a.Timestamp,
		Fields: map[string]string{
			"user": displayName(a),
		},
	})

	return a, nil
}

// Get retrieves an alert by id.
func (c *Coordinator) Get(ctx context.Context, id string) (*Alert, error) {
	a, ok, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("sos alert %s: %w", id, ErrNotFound)
	}
	return a, nil
}

// List returns alerts newest first, optionally filtered by status. The SOS
// board partitions the result into active and resolved sections.
func (c *Coordinator) List(ctx context.Context, status Status) ([]Alert, error) {
	all, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Alert, 0, len(all))
	for _, a := range all {
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// DispatchOfficer assigns a single available officer to an active alert.
// The officer moves to the responding status, the stricter emergency
// variant of assigned.
func (c *Coordinator) DispatchOfficer(ctx context.Context, alertID, officerID string) (*Alert, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok, err := c.store.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("sos alert %s: %w", alertID, ErrNotFound)
	}
	if a.Status == StatusResolved {
		return nil, fmt.Errorf("sos alert %s: %w", alertID, ErrResolved)
	}
	if a.Responded {
		return nil, fmt.Errorf("sos alert %s: %w", alertID, ErrAlreadyResponded)
	}

	// distinguish a bad id from a busy officer before the availability
	// check-and-set
	if _, ok, err := c.roster.Get(ctx, officerID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("officer %s: %w", officerID, roster.ErrUnknownOfficer)
	}

	o, err := c.roster.MarkResponding(ctx, officerID, a.Location.Description)
	if err != nil {
		return nil, err
	}

	a.Responded = true
	a.RespondingOfficer = &RespondingOfficer{
		ID:        o.ID,
		Name:      o.Name,
		Badge:     o.Badge,
		AvatarRef: o.AvatarRef,
	}

	if err := c.store.Put(ctx, a); err != nil {
		// hand the officer back rather than leave a responder with no alert
		// referencing them
		if relErr := c.roster.Release(ctx, officerID); relErr != nil {
			c.logger.Error(ctx, relErr, "sos dispatch rollback failed", "officer", officerID)
		}
		return nil, fmt.Errorf("store alert: %w", err)
	}

	if c.metrics != nil {
		c.metrics.AlertsTotal.WithLabelValues("responded").Inc()
	}
	c.logger.Info(ctx, "officer responding to sos alert",
		"alert", alertID,
		"officer", officerID,
	)

	_ = c.notifier.Send(ctx, notify.Event{
		Kind:     notify.KindSOSResponded,
		EntityID: a.ID,
		Summary:  o.Name + " responding to SOS at " + a.Location.Description,
		Severity: "critical",
		At:       time.Now().UTC(),
		Fields: map[string]string{
			"officer": o.ID,
			"badge":   o.Badge,
		},
	})

	return a, nil
}

// Resolve marks an alert resolved and releases its responding officer, if
// any, back to available. Resolving an already-resolved alert is an
// idempotent success so client retries are safe. An unresponded alert may be
// resolved directly.
func (c *Coordinator) Resolve(ctx context.Context, alertID string) (*Alert, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok, err := c.store.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("sos alert %s: %w", alertID, ErrNotFound)
	}
	if a.Status == StatusResolved {
		return a, nil
	}

	a.Status = StatusResolved
	if err := c.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("store alert: %w", err)
	}

	if a.RespondingOfficer != nil {
		if err := c.roster.Release(ctx, a.RespondingOfficer.ID); err != nil {
			// the alert is resolved either way; the officer can be released
			// manually if this ever fires
			c.logger.Error(ctx, err, "failed to release responding officer",
				"alert", alertID,
				"officer", a.RespondingOfficer.ID,
			)
		}
	}

	if c.metrics != nil {
		c.metrics.AlertsTotal.WithLabelValues("resolved").Inc()
		c.metrics.ActiveAlerts.Dec()
	}
	c.logger.Info(ctx, "sos alert resolved", "alert", alertID)

	_ = c.notifier.Send(ctx, notify.Event{
		Kind:     notify.KindSOSResolved,
		EntityID: a.ID,
		Summary:  "SOS alert at " + a.Location.Description + " resolved",
		At:       time.Now().UTC(),
	})

	return a, nil
}

func displayName(a *Alert) string {
	if a.Anonymous() {
		return "Anonymous"
	}
	if a.UserName != "" {
		return a.UserName
	}
	return a.UserID
}
