// Package dispatch orchestrates the assignment of officers to incidents.
// A dispatch is one logical operation: check the incident, take the whole
// officer batch from the roster (all-or-nothing), attach en-route snapshots
// to the incident, and hand back an immutable Record.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/unilert/internal/incident"
	"github.com/linnemanlabs/unilert/internal/notify"
	"github.com/linnemanlabs/unilert/internal/roster"
)

// etaPlaceholder is the fixed arrival estimate attached to newly dispatched
// officers. There is no live position feed to compute a real one from.
const etaPlaceholder = "10 mins"

// ErrNoOfficers means the dispatch request named no officers.
var ErrNoOfficers = xerrors.New("no officers requested")

// Record is the immutable log entry of one successful dispatch. It is
// returned to the caller and broadcast, not durably stored.
type Record struct {
	ID         string    `json:"id"`
	IncidentID string    `json:"incident_id"`
	OfficerIDs []string  `json:"officer_ids"`
	Note       string    `json:"note,omitempty"`
	At         time.Time `json:"at"`
}

// Coordinator assigns available officers to incidents.
type Coordinator struct {
	roster    *roster.Registry
	incidents *incident.Registry
	logger    log.Logger
	metrics   *Metrics
	notifier  notify.Notifier
}

// NewCoordinator wires the coordinator to its registries. Metrics and
// notifier may be nil.
func NewCoordinator(r *roster.Registry, inc *incident.Registry, logger log.Logger, metrics *Metrics, notifier notify.Notifier) *Coordinator {
	if logger == nil {
		logger = log.Nop()
	}
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Coordinator{
		roster:    r,
		incidents: inc,
		logger:    logger,
		metrics:   metrics,
		notifier:  notifier,
	}
}

// Dispatch assigns the officer batch to the incident.
//
// The roster batch assignment is the atomicity boundary: if any officer is
// unavailable the whole dispatch aborts with *roster.NotAvailableError and
// the incident is left unmodified. An unavailable officer is an expected
// outcome the caller re-prompts on, not a fault.
func (c *Coordinator) Dispatch(ctx context.Context, incidentID string, officerIDs []string, note string) (*Record, error) {
	if len(officerIDs) == 0 {
		return nil, ErrNoOfficers
	}

	inc, err := c.incidents.Get(ctx, incidentID)
	if err != nil {
		c.count("incident_not_found")
		return nil, err
	}
	if inc.Status == incident.StatusResolved {
		c.count("incident_resolved")
		return nil, fmt.Errorf("incident %s: %w", incidentID, incident.ErrResolved)
	}

	assigned, err := c.roster.MarkAssigned(ctx, officerIDs, inc.Location)
	if err != nil {
		var na *roster.NotAvailableError
		if errors.As(err, &na) {
			c.count("officers_unavailable")
			c.logger.Info(ctx, "dispatch rejected, officers unavailable",
				"incident", incidentID,
				"failed_officers", na.IDs,
			)
		} else {
			c.count("error")
		}
		return nil, err
	}

	refs := make([]incident.AssignedOfficer, len(assigned))
	for i, o := range assigned {
		refs[i] = incident.AssignedOfficer{
			ID:     o.ID,
			Name:   o.Name,
			Status: incident.AssignmentEnRoute,
			ETA:    etaPlaceholder,
		}
	}

	if _, err := c.incidents.AttachOfficers(ctx, incidentID, refs); err != nil {
		// the incident resolved (or the store failed) between the status
		// check and the attach; hand the officers back so none of the batch
		// is left partially assigned
		c.rollback(ctx, officerIDs)
		c.count("error")
		return nil, err
	}

	rec := &Record{
		ID:         ulid.Make().String(),
		IncidentID: incidentID,
		OfficerIDs: officerIDs,
		Note:       note,
		At:         time.Now().UTC(),
	}

	c.count("success")
	if c.metrics != nil {
		c.metrics.DispatchedOfficers.Observe(float64(len(officerIDs)))
	}
	c.logger.Info(ctx, "officers dispatched",
		"dispatch", rec.ID,
		"incident", incidentID,
		"officers", officerIDs,
	)

	_ = c.notifier.Send(ctx, notify.Event{
		Kind:     notify.KindDispatch,
		EntityID: incidentID,
		Summary:  "Dispatched " + officerNames(assigned) + " to " + inc.Location,
		Severity: string(inc.Priority),
		At:       rec.At,
		Fields: map[string]string{
			"dispatch_id": rec.ID,
			"officers":    strings.Join(officerIDs, ", "),
			"note":        note,
		},
	})

	return rec, nil
}

func (c *Coordinator) rollback(ctx context.Context, officerIDs []string) {
	for _, id := range officerIDs {
		if err := c.roster.Release(ctx, id); err != nil {
			c.logger.Error(ctx, err, "dispatch rollback failed", "officer", id)
		}
	}
}

func (c *Coordinator) count(outcome string) {
	if c.metrics != nil {
		c.metrics.DispatchesTotal.WithLabelValues(outcome).Inc()
	}
}

func officerNames(officers []roster.Officer) string {
	names := make([]string, len(officers))
	for i, o := range officers {
		names[i] = o.Name
	}
	return strings.Join(names, ", ")
}
