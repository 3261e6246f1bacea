package memstore

import (
	"context"
	"testing"

	"github.com/linnemanlabs/unilert/internal/roster"
)

func TestPutAndGetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	o := &roster.Officer{ID: "officer-1", Name: "Officer One", Status: roster.StatusAvailable}
	if err := s.Put(ctx, o); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "officer-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get returned ok=false")
	}

	// mutating the returned copy must not leak into the store
	got.Status = roster.StatusAssigned
	again, _, err := s.Get(ctx, "officer-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Status != roster.StatusAvailable {
		t.Errorf("store leaked mutation: status = %q", again.Status)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	s := New()
	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get returned ok=true for missing id")
	}
}

func TestListInsertionOrder(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := s.Put(ctx, &roster.Officer{ID: id}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}
	// re-put must not change position
	if err := s.Put(ctx, &roster.Officer{ID: "c", Status: roster.StatusAssigned}); err != nil {
		t.Fatalf("Put c again: %v", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"c", "a", "b"}
	if len(all) != len(want) {
		t.Fatalf("List returned %d officers, want %d", len(all), len(want))
	}
	for i, w := range want {
		if all[i].ID != w {
			t.Errorf("List[%d] = %s, want %s", i, all[i].ID, w)
		}
	}
	if all[0].Status != roster.StatusAssigned {
		t.Errorf("re-put did not update: status = %q", all[0].Status)
	}
}

func TestPutBatch(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	batch := []roster.Officer{
		{ID: "officer-1", Status: roster.StatusAssigned},
		{ID: "officer-2", Status: roster.StatusAssigned},
	}
	if err := s.PutBatch(ctx, batch); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}

	for _, want := range batch {
		got, ok, err := s.Get(ctx, want.ID)
		if err != nil {
			t.Fatalf("Get %s: %v", want.ID, err)
		}
		if !ok || got.Status != want.Status {
			t.Errorf("officer %s: got %+v", want.ID, got)
		}
	}
}
