// Package memstore provides an in-memory implementation of incident.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/unilert/internal/incident"
)

// Store holds incident records in memory. Suitable for dev/testing.
type Store struct {
	mu        sync.RWMutex
	incidents map[string]*incident.Incident
	order     []string // insertion order for List
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		incidents: make(map[string]*incident.Incident),
	}
}

// Get retrieves an incident by id. Returns a deep copy.
func (s *Store) Get(_ context.Context, id string) (*incident.Incident, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, false, nil
	}
	return copyIncident(inc), true, nil
}

// List returns all incidents in insertion order.
func (s *Store) List(_ context.Context) ([]incident.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]incident.Incident, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *copyIncident(s.incidents[id]))
	}
	return out, nil
}

// Put stores a deep copy of the incident.
func (s *Store) Put(_ context.Context, inc *incident.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidents[inc.ID]; !ok {
		s.order = append(s.order, inc.ID)
	}
	s.incidents[inc.ID] = copyIncident(inc)
	return nil
}

// copyIncident clones the record including its officer slice so callers
// never share mutable state with the store.
func copyIncident(inc *incident.Incident) *incident.Incident {
	cp := *inc
	cp.AssignedOfficers = append([]incident.AssignedOfficer(nil), inc.AssignedOfficers...)
	if inc.Coordinates != nil {
		c := *inc.Coordinates
		cp.Coordinates = &c
	}
	if inc.ReportedBy != nil {
		rb := *inc.ReportedBy
		cp.ReportedBy = &rb
	}
	return &cp
}
