// Package testutil holds telemetry fixtures shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/fleet.report/internal/telemetry"
)

// Start is the fixed instant fixtures are built around.
var Start = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

// Device returns a fully populated device entry.
func Device() telemetry.Device {
	return telemetry.Device{
		ID:         "dev-1",
		Name:       "Camión 12",
		Plate:      "ABC123",
		IMEI:       "359881234567890",
		ClientID:   "c1",
		ClientName: "Transportes Andinos",
	}
}

// DrivingPings returns n one-minute pings from start with ignition on.
// Speeds cycle through 0-94 km/h and every tenth ping is stationary.
func DrivingPings(start time.Time, n int) []telemetry.Ping {
	pings := make([]telemetry.Ping, n)
	for i := range pings {
		speed := float64((i * 17) % 95)
		if i%10 == 0 {
			speed = 0
		}
		pings[i] = telemetry.Ping{
			DeviceID: Device().ID,
			FixTime:  start.Add(time.Duration(i) * time.Minute),
			Lat:      telemetry.Float(4.60 + float64(i)*0.001),
			Lon:      telemetry.Float(-74.08 + float64(i)*0.001),
			Speed:    telemetry.Float(speed),
			Ignition: telemetry.Bool(true),
			Odometer: 1000 + float64(i)*0.5,
		}
	}
	return pings
}

// Routes returns two one-hour routes starting at start.
func Routes(start time.Time) []telemetry.RouteSummary {
	return []telemetry.RouteSummary{
		{Ordinal: 1, Start: start, End: start.Add(time.Hour), DistanceKm: 40, AvgSpeed: 40, MaxSpeed: 90, MovingHours: 0.8, IdleHours: 0.2, TotalHours: 1, Points: 60},
		{Ordinal: 2, Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), DistanceKm: 20, AvgSpeed: 20, MaxSpeed: 50, MovingHours: 0.5, IdleHours: 0.5, TotalHours: 1, Points: 60},
	}
}

// PNG encodes a blank grayscale image of w x h pixels.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteJSON marshals v into dir/name and returns the path.
func WriteJSON(t testing.TB, dir, name string, v any) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
