package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/fleet.report/internal/telemetry"
)

var _ telemetry.Source = (*DB)(nil)

// UpsertDevice inserts or replaces a device directory entry.
func (db *DB) UpsertDevice(ctx context.Context, d telemetry.Device) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO devices (device_id, name, plate, imei, model, client_id, client_name, asset_name, sim)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			name = excluded.name, plate = excluded.plate, imei = excluded.imei,
			model = excluded.model, client_id = excluded.client_id,
			client_name = excluded.client_name, asset_name = excluded.asset_name,
			sim = excluded.sim
	`, d.ID, d.Name, d.Plate, d.IMEI, d.Model, d.ClientID, d.ClientName, d.AssetName, d.SIM)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", d.ID, err)
	}
	return nil
}

// Device returns the directory entry for deviceID.
func (db *DB) Device(ctx context.Context, deviceID string) (telemetry.Device, error) {
	var d telemetry.Device
	err := db.QueryRowContext(ctx, `
		SELECT device_id, name, plate, imei, model, client_id, client_name, asset_name, sim
		FROM devices WHERE device_id = ?
	`, deviceID).Scan(&d.ID, &d.Name, &d.Plate, &d.IMEI, &d.Model, &d.ClientID, &d.ClientName, &d.AssetName, &d.SIM)
	if errors.Is(err, sql.ErrNoRows) {
		return telemetry.Device{}, fmt.Errorf("device %s: %w", deviceID, ErrNotFound)
	}
	if err != nil {
		return telemetry.Device{}, fmt.Errorf("failed to get device %s: %w", deviceID, err)
	}
	return d, nil
}

// InsertPings stores pings for deviceID in one transaction. The ping's own
// DeviceID is ignored.
func (db *DB) InsertPings(ctx context.Context, deviceID string, pings []telemetry.Ping) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pings (
			device_id, received_unix_ms, fix_unix_ms, lat, lon, speed,
			course, satellites, ignition, odometer, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare ping insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range pings {
		received := p.ReceivedAt
		if received.IsZero() {
			received = p.FixTime
		}
		_, err := stmt.ExecContext(ctx,
			deviceID, toUnixMs(received), nullUnixMs(p.FixTime),
			nullFloat(p.Lat), nullFloat(p.Lon), nullFloat(p.Speed),
			p.Course, p.Satellites, nullBool(p.Ignition), p.Odometer, string(p.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert ping %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pings: %w", err)
	}
	return nil
}

// window appends time bounds on expr to a query. Zero bounds are open.
func window(query, expr string, from, to time.Time, args []interface{}) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(query)
	if !from.IsZero() {
		b.WriteString(" AND " + expr + " >= ?")
		args = append(args, toUnixMs(from))
	}
	if !to.IsZero() {
		b.WriteString(" AND " + expr + " <= ?")
		args = append(args, toUnixMs(to))
	}
	return b.String(), args
}

// Pings returns the device's pings within [from, to] in chronological order.
func (db *DB) Pings(ctx context.Context, deviceID string, from, to time.Time) ([]telemetry.Ping, error) {
	const ts = "COALESCE(fix_unix_ms, received_unix_ms)"
	query, args := window(`
		SELECT device_id, received_unix_ms, fix_unix_ms, lat, lon, speed,
		       course, satellites, ignition, odometer, status
		FROM pings
		WHERE device_id = ?`, ts, from, to, []interface{}{deviceID})
	query += " ORDER BY " + ts + ", ping_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pings: %w", err)
	}
	defer rows.Close()

	var pings []telemetry.Ping
	for rows.Next() {
		var (
			p             telemetry.Ping
			received      int64
			fix           sql.NullInt64
			lat, lon, spd sql.NullFloat64
			ignition      sql.NullBool
			status        string
		)
		if err := rows.Scan(&p.DeviceID, &received, &fix, &lat, &lon, &spd,
			&p.Course, &p.Satellites, &ignition, &p.Odometer, &status); err != nil {
			return nil, fmt.Errorf("failed to scan ping: %w", err)
		}
		p.ReceivedAt = fromUnixMs(received)
		if fix.Valid {
			p.FixTime = fromUnixMs(fix.Int64)
		}
		p.Lat, p.Lon, p.Speed = floatPtr(lat), floatPtr(lon), floatPtr(spd)
		p.Ignition = boolPtr(ignition)
		p.Status = telemetry.Status(status)
		pings = append(pings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pings: %w", err)
	}
	return pings, nil
}

// InsertRoutes stores route summaries for deviceID, replacing any route with
// the same start time.
func (db *DB) InsertRoutes(ctx context.Context, deviceID string, routes []telemetry.RouteSummary) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range routes {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO routes (
				device_id, ordinal, start_unix_ms, end_unix_ms, distance_km, avg_speed,
				max_speed, moving_hours, idle_hours, total_hours, points
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, deviceID, r.Ordinal, toUnixMs(r.Start), toUnixMs(r.End), r.DistanceKm, r.AvgSpeed,
			r.MaxSpeed, r.MovingHours, r.IdleHours, r.TotalHours, r.Points)
		if err != nil {
			return fmt.Errorf("failed to insert route %d: %w", r.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit routes: %w", err)
	}
	return nil
}

// Routes returns route summaries starting within [from, to], ordered by start.
func (db *DB) Routes(ctx context.Context, deviceID string, from, to time.Time) ([]telemetry.RouteSummary, error) {
	query, args := window(`
		SELECT ordinal, start_unix_ms, end_unix_ms, distance_km, avg_speed, max_speed,
		       moving_hours, idle_hours, total_hours, points
		FROM routes
		WHERE device_id = ?`, "start_unix_ms", from, to, []interface{}{deviceID})
	query += " ORDER BY start_unix_ms, ordinal"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []telemetry.RouteSummary
	for rows.Next() {
		var r telemetry.RouteSummary
		var start, end int64
		if err := rows.Scan(&r.Ordinal, &start, &end, &r.DistanceKm, &r.AvgSpeed, &r.MaxSpeed,
			&r.MovingHours, &r.IdleHours, &r.TotalHours, &r.Points); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		r.Start, r.End = fromUnixMs(start), fromUnixMs(end)
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read routes: %w", err)
	}
	return routes, nil
}

// UpsertDriver inserts or replaces a driver.
func (db *DB) UpsertDriver(ctx context.Context, d telemetry.Driver) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO drivers (driver_id, name, client_id, phone) VALUES (?, ?, ?, ?)
		ON CONFLICT(driver_id) DO UPDATE SET
			name = excluded.name, client_id = excluded.client_id, phone = excluded.phone
	`, d.ID, d.Name, d.ClientID, d.Phone)
	if err != nil {
		return fmt.Errorf("failed to upsert driver %s: %w", d.ID, err)
	}
	return nil
}

// Drivers returns the client's drivers ordered by name.
func (db *DB) Drivers(ctx context.Context, clientID string) ([]telemetry.Driver, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT driver_id, name, client_id, phone
		FROM drivers
		WHERE client_id = ?
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
