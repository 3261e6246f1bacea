// Package memstore provides an in-memory implementation of roster.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/unilert/internal/roster"
)

// Store holds the officer roster in memory. Suitable for dev/testing.
type Store struct {
	mu       sync.RWMutex
	officers map[string]*roster.Officer
	order    []string // insertion order for List
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		officers: make(map[string]*roster.Officer),
	}
}

// Get retrieves an officer by id. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*roster.Officer, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.officers[id]
	if !ok {
		return nil, false, nil
	}
	cp := *o
	return &cp, true, nil
}

// List returns all officers in insertion order.
func (s *Store) List(_ context.Context) ([]roster.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]roster.Officer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.officers[id])
	}
	return out, nil
}

// Put stores a copy of the officer.
func (s *Store) Put(_ context.Context, o *roster.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(o)
	return nil
}

// PutBatch stores copies of all officers. In-memory writes cannot fail
// partway, so the all-or-nothing contract holds trivially.
func (s *Store) PutBatch(_ context.Context, officers []roster.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range officers {
		s.put(&officers[i])
	}
	return nil
}

func (s *Store) put(o *roster.Officer) {
	if _, ok := s.officers[o.ID]; !ok {
		s.order = append(s.order, o.ID)
	}
	cp := *o
	s.officers[o.ID] = &cp
}
