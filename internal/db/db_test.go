package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fleet.report/internal/telemetry"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var t0 = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func testDevice() telemetry.Device {
	return telemetry.Device{
		ID:         "dev-42",
		Name:       "Camión 7",
		Plate:      "ABC-123",
		IMEI:       "356938035643809",
		Model:      "FMB920",
		ClientID:   "cli-1",
		ClientName: "Transportes Andinos",
		AssetName:  "Flota norte",
		SIM:        "+573001112233",
	}
}

func TestMigrations(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp(), "up is idempotent")

	require.NoError(t, db.MigrateDown())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Zero(t, version)

	_, err = db.Device(context.Background(), "dev-42")
	assert.Error(t, err, "tables are gone after down")

	require.NoError(t, db.MigrateUp())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestDevice(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.Device(ctx, "dev-42")
	assert.ErrorIs(t, err, ErrNotFound)

	d := testDevice()
	require.NoError(t, db.UpsertDevice(ctx, d))
	got, err := db.Device(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	d.Plate = "XYZ-999"
	require.NoError(t, db.UpsertDevice(ctx, d))
	got, err = db.Device(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "XYZ-999", got.Plate)
}

func TestPings(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertDevice(ctx, testDevice()))

	pings := []telemetry.Ping{
		{
			DeviceID:   "dev-42",
			ReceivedAt: t0.Add(2 * time.Minute),
			FixTime:    t0.Add(2 * time.Minute),
			Lat:        telemetry.Float(4.61),
			Lon:        telemetry.Float(-74.07),
			Speed:      telemetry.Float(42.5),
			Course:     90,
			Satellites: 9,
			Ignition:   telemetry.Bool(true),
			Odometer:   1200.5,
			Status:     telemetry.StatusMoving,
		},
		{
			// No fix: ordered by receive time.
			DeviceID:   "dev-42",
			ReceivedAt: t0.Add(time.Minute),
			Odometer:   1200.1,
		},
		{
			DeviceID:   "dev-42",
			ReceivedAt: t0.Add(10 * time.Second),
			FixTime:    t0,
			Speed:      telemetry.Float(0),
			Ignition:   telemetry.Bool(false),
			Odometer:   1200,
		},
	}
	require.NoError(t, db.InsertPings(ctx, "dev-42", pings))

	got, err := db.Pings(ctx, "dev-42", time.Time{}, time.Time{})
	require.NoError(t, err)
	want := []telemetry.Ping{pings[2], pings[1], pings[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Pings() mismatch (-want +got):\n%s", diff)
	}

	got, err = db.Pings(ctx, "dev-42", t0.Add(30*time.Second), t0.Add(90*time.Second))
	require.NoError(t, err)
	if diff := cmp.Diff(pings[1:2], got); diff != "" {
		t.Errorf("bounded Pings() mismatch (-want +got):\n%s", diff)
	}

	got, err = db.Pings(ctx, "other", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertPings_UnknownDevice(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	err := db.InsertPings(context.Background(), "ghost", []telemetry.Ping{{ReceivedAt: t0}})
	assert.Error(t, err, "foreign keys are enforced")

	got, err := db.Pings(context.Background(), "ghost", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got, "failed batch is rolled back")
}

func TestRoutes(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertDevice(ctx, testDevice()))

	routes := []telemetry.RouteSummary{
		{Ordinal: 2, Start: t0.Add(3 * time.Hour), End: t0.Add(4 * time.Hour), DistanceKm: 30, AvgSpeed: 30, MaxSpeed: 70, MovingHours: 0.8, IdleHours: 0.2, TotalHours: 1, Points: 120},
		{Ordinal: 1, Start: t0, End: t0.Add(time.Hour), DistanceKm: 12.5, AvgSpeed: 25, MaxSpeed: 61, MovingHours: 0.5, IdleHours: 0.5, TotalHours: 1, Points: 80},
	}
	require.NoError(t, db.InsertRoutes(ctx, "dev-42", routes))

	got, err := db.Routes(ctx, "dev-42", time.Time{}, time.Time{})
	require.NoError(t, err)
	if diff := cmp.Diff([]telemetry.RouteSummary{routes[1], routes[0]}, got); diff != "" {
		t.Errorf("Routes() mismatch (-want +got):\n%s", diff)
	}

	// Same start replaces.
	routes[1].DistanceKm = 13
	require.NoError(t, db.InsertRoutes(ctx, "dev-42", routes[1:]))
	got, err = db.Routes(ctx, "dev-42", t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 13.0, got[0].DistanceKm)
}

func TestDrivers(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	for _, d := range []telemetry.Driver{
		{ID: "d2", Name: "Marta", ClientID: "cli-1", Phone: "300"},
		{ID: "d1", Name: "Andrés", ClientID: "cli-1", Phone: "301"},
		{ID: "d3", Name: "Luis", ClientID: "cli-2"},
	} {
		require.NoError(t, db.UpsertDriver(ctx, d))
	}

	got, err := db.Drivers(ctx, "cli-1")
	require.NoError(t, err)
	want := []telemetry.Driver{
		{ID: "d1", Name: "Andrés", ClientID: "cli-1", Phone: "301"},
		{ID: "d2", Name: "Marta", ClientID: "cli-1", Phone: "300"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Drivers() mismatch (-want +got):\n%s", diff)
	}

	got, err = db.Drivers(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReportRecords(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetReportRecord(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteReportRecord(ctx, 1), ErrNotFound)

	first := &ReportRecord{
		RunID:     "run-a",
		DeviceID:  "dev-42",
		Variant:   "stats",
		DateRange: "01/03/2025 - 07/03/2025",
		Filepath:  "out/run-a/reporte.pdf",
		Filename:  "reporte.pdf",
		Theme:     "light",
		Timezone:  "America/Bogota",
		Units:     "kmph",
		Sections:  "resumen,velocidad",
		SizeBytes: 2048,
		CreatedAt: t0,
	}
	require.NoError(t, db.CreateReportRecord(ctx, first))
	assert.NotZero(t, first.ID)

	second := &ReportRecord{RunID: "run-b", DeviceID: "dev-42", Variant: "full", Filepath: "b.pdf", Filename: "b.pdf", CreatedAt: t0.Add(time.Hour)}
	other := &ReportRecord{RunID: "run-c", DeviceID: "dev-7", Variant: "history", Filepath: "c.pdf", Filename: "c.pdf"}
	require.NoError(t, db.CreateReportRecord(ctx, second))
	require.NoError(t, db.CreateReportRecord(ctx, other))
	assert.False(t, other.CreatedAt.IsZero())

	assert.Error(t, db.CreateReportRecord(ctx, &ReportRecord{RunID: "run-a", Filepath: "x", Filename: "x"}), "run IDs are unique")

	got, err := db.GetReportRecord(ctx, first.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("GetReportRecord() mismatch (-want +got):\n%s", diff)
	}

	byRun, err := db.GetReportRecordByRunID(ctx, "run-b")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byRun.ID)
	_, err = db.GetReportRecordByRunID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := db.GetRecentReportRecords(ctx, "dev-42", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-b", recent[0].RunID)
	assert.Equal(t, "run-a", recent[1].RunID)

	all, err := db.GetRecentReportRecords(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, db.DeleteReportRecord(ctx, first.ID))
	_, err = db.GetReportRecord(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
