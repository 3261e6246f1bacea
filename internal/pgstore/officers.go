package pgstore

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/unilert/internal/roster"
)

// OfficerStore persists the officer roster in PostgreSQL.
type OfficerStore struct {
	pool *pgxpool.Pool
}

const officerColumns = `id, name, badge, status, location, avatar_ref`

// Get retrieves an officer by id.
func (s *OfficerStore) Get(ctx context.Context, id string) (*roster.Officer, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.OfficerStore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + officerColumns + ` FROM officers WHERE id = $1`
	o, err := scanOfficer(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if o == nil {
		return nil, false, nil
	}
	return o, true, nil
}

// List returns the roster in insertion order.
func (s *OfficerStore) List(ctx context.Context) ([]roster.Officer, error) {
	ctx, span := tracer.Start(ctx, "pgstore.OfficerStore.List", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx, `SELECT `+officerColumns+` FROM officers ORDER BY seq`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query officers: %w", err)
	}
	defer rows.Close()

	var officers []roster.Officer
	for rows.Next() {
		var o roster.Officer
		var status string
		if err := rows.Scan(&o.ID, &o.Name, &o.Badge, &status, &o.Location, &o.AvatarRef); err != nil {
			return nil, fmt.Errorf("scan officer: %w", err)
		}
		o.Status = roster.Status(status)
		officers = append(officers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate officers: %w", err)
	}
	return officers, nil
}

// Put upserts a single officer.
func (s *OfficerStore) Put(ctx context.Context, o *roster.Officer) error {
	ctx, span := tracer.Start(ctx, "pgstore.OfficerStore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	if _, err := s.pool.Exec(ctx, upsertOfficerQuery,
		o.ID, o.Name, o.Badge, string(o.Status), o.Location, o.AvatarRef,
	); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert officer: %w", err)
	}
	return nil
}

// PutBatch upserts all officers in one transaction, so a batch assignment
// lands completely or not at all.
func (s *OfficerStore) PutBatch(ctx context.Context, officers []roster.Officer) error {
	ctx, span := tracer.Start(ctx, "pgstore.OfficerStore.PutBatch", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
		attribute.Int("db.batch.size", len(officers)),
	))
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	for i := range officers {
		o := &officers[i]
		if _, err := tx.Exec(ctx, upsertOfficerQuery,
			o.ID, o.Name, o.Badge, string(o.Status), o.Location, o.AvatarRef,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("upsert officer %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const upsertOfficerQuery = `INSERT INTO officers (id, name, badge, status, location, avatar_ref)
	VALUES ($1,$2,$3,$4,$5,$6)
	ON CONFLICT (id) DO UPDATE SET
		name       = EXCLUDED.name,
		badge      = EXCLUDED.badge,
		status     = EXCLUDED.status,
		location   = EXCLUDED.location,
		avatar_ref = EXCLUDED.avatar_ref`

// scanOfficer scans a single row. Returns (nil, nil) when no row is found.
func scanOfficer(row pgx.Row) (*roster.Officer, error) {
	var o roster.Officer
	var status string
	err := row.Scan(&o.ID, &o.Name, &o.Badge, &status, &o.Location, &o.AvatarRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	o.Status = roster.Status(status)
	return &o, nil
}
