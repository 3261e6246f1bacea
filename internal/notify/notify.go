// Package notify defines the broadcast boundary: coordinators publish an
// Event after every successful mutation, and configured sinks (Slack, Redis
// queue) deliver it. Delivery is best-effort; a failing sink never fails the
// mutation that produced the event.
package notify

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// Kind identifies what happened.
type Kind string

const (
	// KindDispatch means officers were dispatched to an incident
	KindDispatch Kind = "dispatch"

	// KindSOSActive means a new SOS alert arrived
	KindSOSActive Kind = "sos_active"

	// KindSOSResponded means an officer was dispatched to an SOS alert
	KindSOSResponded Kind = "sos_responded"

	// KindSOSResolved means an SOS alert was resolved
	KindSOSResolved Kind = "sos_resolved"

	// KindIncidentStatus means an incident changed status
	KindIncidentStatus Kind = "incident_status"
)

// Event is a broadcast record of a successful mutation.
type Event struct {
	Kind     Kind              `json:"kind"`
	EntityID string            `json:"entity_id"`
	Summary  string            `json:"summary"`
	Severity string            `json:"severity,omitempty"`
	At       time.Time         `json:"at"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Notifier delivers events to one sink.
type Notifier interface {
	Send(ctx context.Context, ev Event) error
}

// Nop returns a notifier that discards everything.
func Nop() Notifier { return nopNotifier{} }

type nopNotifier struct{}

func (nopNotifier) Send(context.Context, Event) error { return nil }

// Fanout delivers each event to every sink, logging failures instead of
// propagating them.
type Fanout struct {
	sinks  []Notifier
	logger log.Logger
}

// NewFanout builds a fanout over the given sinks.
func NewFanout(logger log.Logger, sinks ...Notifier) *Fanout {
	if logger == nil {
		logger = log.Nop()
	}
	return &Fanout{sinks: sinks, logger: logger}
}

// Send delivers ev to all sinks. Always returns nil.
func (f *Fanout) Send(ctx context.Context, ev Event) error {
	for _, s := range f.sinks {
		if err := s.Send(ctx, ev); err != nil {
			f.logger.Error(ctx, err, "notify sink failed", "kind", string(ev.Kind), "entity", ev.EntityID)
		}
	}
	return nil
}
