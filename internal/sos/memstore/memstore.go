// Package memstore provides an in-memory implementation of sos.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/unilert/internal/sos"
)

// Store holds SOS alerts in memory. Suitable for dev/testing.
type Store struct {
	mu     sync.RWMutex
	alerts map[string]*sos.Alert
	order  []string // insertion order for List
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		alerts: make(map[string]*sos.Alert),
	}
}

// Get retrieves an alert by id. Returns a deep copy.
func (s *Store) Get(_ context.Context, id string) (*sos.Alert, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, false, nil
	}
	return copyAlert(a), true, nil
}

// List returns all alerts in insertion order.
func (s *Store) List(_ context.Context) ([]sos.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sos.Alert, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *copyAlert(s.alerts[id]))
	}
	return out, nil
}

// Put stores a deep copy of the alert.
func (s *Store) Put(_ context.Context, a *sos.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.alerts[a.ID] = copyAlert(a)
	return nil
}

func copyAlert(a *sos.Alert) *sos.Alert {
	cp := *a
	if a.RespondingOfficer != nil {
		ro := *a.RespondingOfficer
		cp.RespondingOfficer = &ro
	}
	return &cp
}
