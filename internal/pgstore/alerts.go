package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/unilert/internal/sos"
)

// AlertStore persists SOS alerts in PostgreSQL.
type AlertStore struct {
	pool *pgxpool.Pool
}

const alertColumns = `id, user_id, user_name, ts, lat, lng, location_desc,
	status, responded, responding_officer`

// Get retrieves an alert by id.
func (s *AlertStore) Get(ctx context.Context, id string) (*sos.Alert, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.AlertStore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + alertColumns + ` FROM sos_alerts WHERE id = $1`
	a, err := scanAlert(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if a == nil {
		return nil, false, nil
	}
	return a, true, nil
}

// List returns all alerts in insertion order.
func (s *AlertStore) List(ctx context.Context) ([]sos.Alert, error) {
	ctx, span := tracer.Start(ctx, "pgstore.AlertStore.List", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx, `SELECT `+alertColumns+` FROM sos_alerts ORDER BY seq`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []sos.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

// Put upserts an alert.
func (s *AlertStore) Put(ctx context.Context, a *sos.Alert) error {
	ctx, span := tracer.Start(ctx, "pgstore.AlertStore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	var officerJSON []byte
	if a.RespondingOfficer != nil {
		var err error
		officerJSON, err = json.Marshal(a.RespondingOfficer)
		if err != nil {
			return fmt.Errorf("marshal responding officer: %w", err)
		}
	}

	query := `INSERT INTO sos_alerts (
		id, user_id, user_name, ts, lat, lng, location_desc,
		status, responded, responding_officer
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (id) DO UPDATE SET
		user_id            = EXCLUDED.user_id,
		user_name          = EXCLUDED.user_name,
		ts                 = EXCLUDED.ts,
		lat                = EXCLUDED.lat,
		lng                = EXCLUDED.lng,
		location_desc      = EXCLUDED.location_desc,
		status             = EXCLUDED.status,
		responded          = EXCLUDED.responded,
		responding_officer = EXCLUDED.responding_officer`

	if _, err := s.pool.Exec(ctx, query,
		a.ID, a.UserID, a.UserName, a.Timestamp, a.Location.Lat, a.Location.Lng,
		a.Location.Description, string(a.Status), a.Responded, officerJSON,
	); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert alert: %w", err)
	}
	return nil
}

// scanAlert scans a single row. Returns (nil, nil) when no row is found.
func scanAlert(row pgx.Row) (*sos.Alert, error) {
	var (
		a           sos.Alert
		status      string
		officerJSON []byte
	)

	err := row.Scan(
		&a.ID, &a.UserID, &a.UserName, &a.Timestamp, &a.Location.Lat, &a.Location.Lng,
		&a.Location.Description, &status, &a.Responded, &officerJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	a.Status = sos.Status(status)
	if len(officerJSON) > 0 {
		a.RespondingOfficer = &sos.RespondingOfficer{}
		if err := json.Unmarshal(officerJSON, a.RespondingOfficer); err != nil {
			return nil, fmt.Errorf("unmarshal responding officer: %w", err)
		}
	}

	return &a, nil
}
