package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/banshee-data/fleet.report/internal/security"
	"github.com/banshee-data/fleet.report/internal/telemetry"
)

const maxBundleSize = 64 * 1024 * 1024 // 64MB

// bundle is an exported telemetry window for one device, as produced by the
// tracking platform's export job.
type bundle struct {
	Device           telemetry.Device         `json:"device"`
	Pings            []telemetry.Ping         `json:"pings"`
	Routes           []telemetry.RouteSummary `json:"routes"`
	Drivers          []telemetry.Driver       `json:"drivers"`
	AssignedDriverID string                   `json:"assigned_driver_id,omitempty"`
}

func loadBundle(path string) (*bundle, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("bundle file must have .json extension, got %q", ext)
	}
	if err := security.ValidateInputPath(cleanPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat bundle: %w", err)
	}
	if info.Size() > maxBundleSize {
		return nil, fmt.Errorf("bundle too large: %d bytes (max %d)", info.Size(), maxBundleSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle JSON: %w", err)
	}
	if b.Device.ID == "" {
		return nil, fmt.Errorf("bundle has no device id")
	}

	// Exports are not guaranteed to be ordered.
	sort.SliceStable(b.Pings, func(i, j int) bool {
		return b.Pings[i].Time().Before(b.Pings[j].Time())
	})
	sort.SliceStable(b.Routes, func(i, j int) bool {
		return b.Routes[i].Start.Before(b.Routes[j].Start)
	})
	for i := range b.Pings {
		if b.Pings[i].DeviceID == "" {
			b.Pings[i].DeviceID = b.Device.ID
		}
	}
	return &b, nil
}

// bundleSource serves a loaded bundle through telemetry.Source.
type bundleSource struct {
	b *bundle
}

var _ telemetry.Source = bundleSource{}

func (s bundleSource) Device(_ context.Context, deviceID string) (telemetry.Device, error) {
	if deviceID != "" && deviceID != s.b.Device.ID {
		return telemetry.Device{}, fmt.Errorf("device %s not in bundle (has %s)", deviceID, s.b.Device.ID)
	}
	return s.b.Device, nil
}

func inWindow(t, from, to time.Time) bool {
	return (from.IsZero() || !t.Before(from)) && (to.IsZero() || !t.After(to))
}

func (s bundleSource) Pings(_ context.Context, _ string, from, to time.Time) ([]telemetry.Ping, error) {
	var out []telemetry.Ping
	for _, p := range s.b.Pings {
		if inWindow(p.Time(), from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s bundleSource) Routes(_ context.Context, _ string, from, to time.Time) ([]telemetry.RouteSummary, error) {
	var out []telemetry.RouteSummary
	for _, r := range s.b.Routes {
		if inWindow(r.Start, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s bundleSource) Drivers(_ context.Context, clientID string) ([]telemetry.Driver, error) {
	var out []telemetry.Driver
	for _, d := range s.b.Drivers {
		if clientID == "" || d.ClientID == clientID {
			out = append(out, d)
		}
	}
	return out, nil
}
