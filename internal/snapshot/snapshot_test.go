package snapshot

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fleet.report/internal/report"
	"github.com/banshee-data/fleet.report/internal/telemetry"
	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/units"
)

func samplePings(n int) []telemetry.Ping {
	t0 := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	pings := make([]telemetry.Ping, n)
	for i := range pings {
		speed := float64(i%7) * 15
		pings[i] = telemetry.Ping{
			FixTime: t0.Add(time.Duration(i) * 2 * time.Minute),
			Lat:     telemetry.Float(4.60 + float64(i)*0.002),
			Lon:     telemetry.Float(-74.08 + float64(i%5)*0.001),
			Speed:   telemetry.Float(speed),
		}
	}
	return pings
}

func decode(t *testing.T, data []byte) image.Config {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	return cfg
}

func TestCapture(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		theme string
		kind  report.SnapshotKind
		units string
	}{
		{"map light", theme.Light, report.SnapshotMap, ""},
		{"map dark", theme.Dark, report.SnapshotMap, units.MPH},
		{"chart light", theme.Light, report.SnapshotChart, units.KMPH},
		{"chart dark", theme.Dark, report.SnapshotChart, units.MPH},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewRenderer(theme.MustNamed(tt.theme), nil, tt.units)

			data, err := r.Capture(context.Background(), tt.kind, samplePings(40))
			require.NoError(t, err)
			cfg := decode(t, data)
			assert.Greater(t, cfg.Width, cfg.Height)
		})
	}
}

func TestCapture_NotEnoughPoints(t *testing.T) {
	t.Parallel()
	r := NewRenderer(theme.MustNamed(theme.Light), time.UTC, "")

	for _, kind := range []report.SnapshotKind{report.SnapshotMap, report.SnapshotChart} {
		_, err := r.Capture(context.Background(), kind, samplePings(1))
		assert.ErrorIs(t, err, ErrNotEnoughPoints, string(kind))
	}

	noFix := samplePings(5)
	for i := range noFix {
		noFix[i].Lat, noFix[i].Lon = nil, nil
	}
	_, err := r.Capture(context.Background(), report.SnapshotMap, noFix)
	assert.ErrorIs(t, err, ErrNotEnoughPoints, "pings without position are not plotted")
}

func TestCapture_Errors(t *testing.T) {
	t.Parallel()
	r := NewRenderer(theme.MustNamed(theme.Light), nil, "")

	_, err := r.Capture(context.Background(), report.SnapshotKind("heatmap"), samplePings(10))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Capture(ctx, report.SnapshotMap, samplePings(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRendererFeedsComposer(t *testing.T) {
	t.Parallel()
	th := theme.MustNamed(theme.Light)
	c := &report.Composer{Snapshots: NewRenderer(th, nil, "")}

	out, err := c.GenerateFullReport(context.Background(), report.Options{
		Device: telemetry.Device{ID: "dev-1"},
		Pings:  samplePings(30),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
