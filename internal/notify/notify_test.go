package notify

import (
	"context"
	"errors"
	"testing"
)

type recordSink struct {
	events []Event
	err    error
}

func (s *recordSink) Send(_ context.Context, ev Event) error {
	s.events = append(s.events, ev)
	return s.err
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	t.Parallel()

	a := &recordSink{}
	b := &recordSink{}
	f := NewFanout(nil, a, b)

	ev := Event{Kind: KindDispatch, EntityID: "inc-1", Summary: "test"}
	if err := f.Send(context.Background(), ev); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("deliveries = %d/%d, want 1/1", len(a.events), len(b.events))
	}
	if a.events[0].EntityID != "inc-1" {
		t.Errorf("event = %+v", a.events[0])
	}
}

func TestFanoutSwallowsSinkFailure(t *testing.T) {
	t.Parallel()

	failing := &recordSink{err: errors.New("webhook down")}
	healthy := &recordSink{}
	f := NewFanout(nil, failing, healthy)

	// a failing sink must not fail the send or starve later sinks
	if err := f.Send(context.Background(), Event{Kind: KindSOSActive}); err != nil {
		t.Fatalf("Send: %v, want nil", err)
	}
	if len(healthy.events) != 1 {
		t.Errorf("healthy sink got %d events, want 1", len(healthy.events))
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	if err := Nop().Send(context.Background(), Event{Kind: KindSOSResolved}); err != nil {
		t.Errorf("Nop Send: %v", err)
	}
}
