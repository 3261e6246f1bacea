// Package pgstore provides PostgreSQL implementations of the roster,
// incident, and SOS store interfaces over one shared pool and schema.
package pgstore

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/linnemanlabs/unilert/internal/pgstore")

//go:embed schema.sql
var schema string

// Store owns the shared pool and hands out the per-registry stores.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store. The pool is owned by the
// caller.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Officers returns the roster.Store implementation.
func (s *Store) Officers() *OfficerStore {
	return &OfficerStore{pool: s.pool}
}

// Incidents returns the incident.Store implementation.
func (s *Store) Incidents() *IncidentStore {
	return &IncidentStore{pool: s.pool}
}

// Alerts returns the sos.Store implementation.
func (s *Store) Alerts() *AlertStore {
	return &AlertStore{pool: s.pool}
}
