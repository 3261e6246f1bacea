package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/unilert/internal/incident"
)

// IncidentStore persists incident records in PostgreSQL. Officer snapshots
// and reporter details are JSONB: they are denormalized display data, never
// queried relationally.
type IncidentStore struct {
	pool *pgxpool.Pool
}

const incidentColumns = `id, type, description, location, lat, lng, status, priority,
	reported_by, assigned_officers, reported_at`

// Get retrieves an incident by id.
func (s *IncidentStore) Get(ctx context.Context, id string) (*incident.Incident, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.IncidentStore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`
	inc, err := scanIncident(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if inc == nil {
		return nil, false, nil
	}
	return inc, true, nil
}

// List returns all incidents in insertion order.
func (s *IncidentStore) List(ctx context.Context) ([]incident.Incident, error) {
	ctx, span := tracer.Start(ctx, "pgstore.IncidentStore.List", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx, `SELECT `+incidentColumns+` FROM incidents ORDER BY seq`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []incident.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, *inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}

// Put upserts an incident.
func (s *IncidentStore) Put(ctx context.Context, inc *incident.Incident) error {
	ctx, span := tracer.Start(ctx, "pgstore.IncidentStore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	officersJSON, err := json.Marshal(inc.AssignedOfficers)
	if err != nil {
		return fmt.Errorf("marshal assigned officers: %w", err)
	}

	var reporterJSON []byte
	if inc.ReportedBy != nil {
		reporterJSON, err = json.Marshal(inc.ReportedBy)
		if err != nil {
			return fmt.Errorf("marshal reporter: %w", err)
		}
	}

	var lat, lng *float64
	if inc.Coordinates != nil {
		lat, lng = &inc.Coordinates.Lat, &inc.Coordinates.Lng
	}

	var reportedAt *time.Time
	if !inc.ReportedAt.IsZero() {
		reportedAt = &inc.ReportedAt
	}

	query := `INSERT INTO incidents (
		id, type, description, location, lat, lng, status, priority,
		reported_by, assigned_officers, reported_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	ON CONFLICT (id) DO UPDATE SET
		type              = EXCLUDED.type,
		description       = EXCLUDED.description,
		location          = EXCLUDED.location,
		lat               = EXCLUDED.lat,
		lng               = EXCLUDED.lng,
		status            = EXCLUDED.status,
		priority          = EXCLUDED.priority,
		reported_by       = EXCLUDED.reported_by,
		assigned_officers = EXCLUDED.assigned_officers,
		reported_at       = EXCLUDED.reported_at`

	if _, err := s.pool.Exec(ctx, query,
		inc.ID, inc.Type, inc.Description, inc.Location, lat, lng,
		string(inc.Status), string(inc.Priority), reporterJSON, officersJSON, reportedAt,
	); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert incident: %w", err)
	}
	return nil
}

// scanIncident scans a single row. Returns (nil, nil) when no row is found.
func scanIncident(row pgx.Row) (*incident.Incident, error) {
	var (
		inc          incident.Incident
		status       string
		priority     string
		lat, lng     *float64
		reporterJSON []byte
		officersJSON []byte
		reportedAt   *time.Time
	)

	err := row.Scan(
		&inc.ID, &inc.Type, &inc.Description, &inc.Location, &lat, &lng,
		&status, &priority, &reporterJSON, &officersJSON, &reportedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	inc.Status = incident.Status(status)
	inc.Priority = incident.Priority(priority)

	if lat != nil && lng != nil {
		inc.Coordinates = &incident.Coordinates{Lat: *lat, Lng: *lng}
	}
	if reportedAt != nil {
		inc.ReportedAt = *reportedAt
	}
	if len(reporterJSON) > 0 {
		inc.ReportedBy = &incident.Reporter{}
		if err := json.Unmarshal(reporterJSON, inc.ReportedBy); err != nil {
			return nil, fmt.Errorf("unmarshal reporter: %w", err)
		}
	}
	if err := json.Unmarshal(officersJSON, &inc.AssignedOfficers); err != nil {
		return nil, fmt.Errorf("unmarshal assigned officers: %w", err)
	}
	if inc.AssignedOfficers == nil {
		inc.AssignedOfficers = []incident.AssignedOfficer{}
	}

	return &inc, nil
}
