// Package pgsource reads device telemetry from a PostgreSQL tracking
// database.
package pgsource

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banshee-data/fleet.report/internal/telemetry"
)

// ErrNotFound is returned when the device does not exist.
var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schema string

// Querier is the subset of pgx used here. Both *pgxpool.Pool and pgxmock
// pools satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Source implements telemetry.Source over a Querier.
type Source struct {
	db Querier
}

var _ telemetry.Source = (*Source)(nil)

func New(db Querier) *Source {
	return &Source{db: db}
}

// Connect opens a pool and checks it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the telemetry tables when they are missing.
func (s *Source) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// bound maps a zero time to NULL so the bound is open.
func bound(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func (s *Source) Device(ctx context.Context, deviceID string) (telemetry.Device, error) {
	var d telemetry.Device
	err := s.db.QueryRow(ctx, `
		SELECT device_id, name, plate, imei, model, client_id, client_name, asset_name, sim
		FROM devices WHERE device_id = $1
	`, deviceID).Scan(&d.ID, &d.Name, &d.Plate, &d.IMEI, &d.Model, &d.ClientID, &d.ClientName, &d.AssetName, &d.SIM)
	if errors.Is(err, pgx.ErrNoRows) {
		return telemetry.Device{}, fmt.Errorf("device %s: %w", deviceID, ErrNotFound)
	}
	if err != nil {
		return telemetry.Device{}, fmt.Errorf("failed to get device %s: %w", deviceID, err)
	}
	return d, nil
}

func (s *Source) Pings(ctx context.Context, deviceID string, from, to time.Time) ([]telemetry.Ping, error) {
	rows, err := s.db.Query(ctx, `
		SELECT device_id, received_at, fix_time, lat, lon, speed,
		       course, satellites, ignition, odometer, status
		FROM pings
		WHERE device_id = $1
		  AND ($2::timestamptz IS NULL OR COALESCE(fix_time, received_at) >= $2)
		  AND ($3::timestamptz IS NULL OR COALESCE(fix_time, received_at) <= $3)
		ORDER BY COALESCE(fix_time, received_at), ping_id
	`, deviceID, bound(from), bound(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query pings: %w", err)
	}
	defer rows.Close()

	var pings []telemetry.Ping
	for rows.Next() {
		var (
			p      telemetry.Ping
			fix    *time.Time
			status string
		)
		if err := rows.Scan(&p.DeviceID, &p.ReceivedAt, &fix, &p.Lat, &p.Lon, &p.Speed,
			&p.Course, &p.Satellites, &p.Ignition, &p.Odometer, &status); err != nil {
			return nil, fmt.Errorf("failed to scan ping: %w", err)
		}
		if fix != nil {
			p.FixTime = *fix
		}
		p.Status = telemetry.Status(status)
		pings = append(pings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pings: %w", err)
	}
	return pings, nil
}

func (s *Source) Routes(ctx context.Context, deviceID string, from, to time.Time) ([]telemetry.RouteSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ordinal, start_time, end_time, distance_km, avg_speed, max_speed,
		       moving_hours, idle_hours, total_hours, points
		FROM routes
		WHERE device_id = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time <= $3)
		ORDER BY start_time, ordinal
	`, deviceID, bound(from), bound(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []telemetry.RouteSummary
	for rows.Next() {
		var r telemetry.RouteSummary
		if err := rows.Scan(&r.Ordinal, &r.Start, &r.End, &r.DistanceKm, &r.AvgSpeed, &r.MaxSpeed,
			&r.MovingHours, &r.IdleHours, &r.TotalHours, &r.Points); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read routes: %w", err)
	}
	return routes, nil
}

func (s *Source) Drivers(ctx context.Context, clientID string) ([]telemetry.Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT driver_id, name, client_id, phone
		FROM drivers
		WHERE client_id = $1
		ORDER BY name, driver_id
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	var drivers []telemetry.Driver
	for rows.Next() {
		var d telemetry.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.ClientID, &d.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drivers: %w", err)
	}
	return drivers, nil
}
