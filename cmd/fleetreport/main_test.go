package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fleet.report/internal/db"
	"github.com/banshee-data/fleet.report/internal/telemetry"
	"github.com/banshee-data/fleet.report/internal/testutil"
)

func writeBundle(t *testing.T, dir string) string {
	t.Helper()
	dev := testutil.Device()
	pings := testutil.DrivingPings(testutil.Start, 120)
	// Shuffle two pings; loading must restore order.
	pings[3], pings[4] = pings[4], pings[3]
	return testutil.WriteJSON(t, dir, "bundle.json", bundle{
		Device: dev,
		Pings:  pings,
		Routes: testutil.Routes(testutil.Start),
		Drivers: []telemetry.Driver{
			{ID: "d1", Name: "Ana Pérez", ClientID: dev.ClientID},
			{ID: "d2", Name: "Luis Gómez", ClientID: dev.ClientID},
		},
		AssignedDriverID: "d1",
	})
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func clearEnv(t *testing.T) {
	t.Setenv(envDBPath, "")
	t.Setenv(envPGURL, "")
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "%s is not a PDF", path)
}

func TestRun_Version(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fleetreport "))
}

func TestRun_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "publish")
	assert.ErrorContains(t, err, "unknown command")
}

func TestGenerate_FromBundle(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	input := writeBundle(t, dir)
	out := filepath.Join(dir, "reports", "stats.pdf")
	html := filepath.Join(dir, "preview.html")

	stdout, err := runCLI(t, "generate",
		"-input", input,
		"-variant", "stats",
		"-sections", "resumen, conductores",
		"-theme", "dark",
		"-units", "mph",
		"-tz", "America/Bogota",
		"-no-snapshots",
		"-out", out,
		"-preview", html,
	)
	require.NoError(t, err)
	assert.Equal(t, out+"\n"+html+"\n", stdout)
	assertPDF(t, out)

	page, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(page), "echarts")
}

func TestGenerate_RecordsRunInStore(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	input := writeBundle(t, dir)
	dbPath := filepath.Join(dir, "fleet.db")
	outDir := filepath.Join(dir, "out")
	cfgPath := testutil.WriteJSON(t, dir, "report.json", map[string]any{
		"output_dir":  outDir,
		"attribution": "Transportes Andinos",
		"max_pings":   50,
	})

	stdout, err := runCLI(t, "-config", cfgPath, "-input", input, "-db", dbPath, "-variant", "full")
	require.NoError(t, err)
	path := strings.TrimSpace(stdout)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "camion_12_full_"), path)
	assertPDF(t, path)

	store, err := db.NewDB(dbPath)
	require.NoError(t, err)
	defer store.Close()
	records, err := store.GetRecentReportRecords(context.Background(), "dev-1", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "full", records[0].Variant)
	assert.Equal(t, path, records[0].Filepath)
	assert.NotEmpty(t, records[0].RunID)
	assert.Positive(t, records[0].SizeBytes)

	history, err := runCLI(t, "history", "-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, history, "DEVICE")
	assert.Contains(t, history, path)
}

func TestImportThenGenerateFromStore(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	input := writeBundle(t, dir)
	dbPath := filepath.Join(dir, "fleet.db")

	stdout, err := runCLI(t, "import", "-db", dbPath, "-input", input)
	require.NoError(t, err)
	assert.Equal(t, "imported device dev-1: 120 pings, 2 routes, 2 drivers\n", stdout)

	out := filepath.Join(dir, "history.pdf")
	_, err = runCLI(t, "generate",
		"-db", dbPath,
		"-device", "dev-1",
		"-driver", "d2",
		"-from", "2025-06-02",
		"-to", "2025-06-02",
		"-variant", "history",
		"-no-snapshots",
		"-out", out,
	)
	require.NoError(t, err)
	assertPDF(t, out)

	_, err = runCLI(t, "generate", "-db", dbPath, "-device", "ghost", "-no-snapshots", "-out", out)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestGenerate_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	input := writeBundle(t, dir)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no source", []string{"-device", "dev-1"}, "no telemetry source"},
		{"bad variant", []string{"-input", input, "-variant", "weekly"}, "unknown variant"},
		{"bad theme", []string{"-input", input, "-theme", "sepia"}, "unknown theme"},
		{"bad units", []string{"-input", input, "-units", "furlongs"}, "invalid units"},
		{"bad date", []string{"-input", input, "-from", "02/06/2025"}, "invalid time"},
		{"reversed window", []string{"-input", input, "-from", "2025-06-03", "-to", "2025-06-01"}, "before"},
		{"wrong device", []string{"-input", input, "-device", "dev-9"}, "not in bundle"},
		{"import without db", nil, "import needs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate"}, tt.args...)
			if tt.args == nil {
				args = []string{"import", "-input", input}
			}
			_, err := runCLI(t, args...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseBound(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	tests := []struct {
		in   string
		end  bool
		want time.Time
	}{
		{"", false, time.Time{}},
		{"2025-06-02", false, time.Date(2025, 6, 2, 0, 0, 0, 0, bogota)},
		{"2025-06-02", true, time.Date(2025, 6, 2, 23, 59, 59, int(999*time.Millisecond), bogota)},
		{"2025-06-02T10:00:00Z", true, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseBound(tt.in, bogota, tt.end)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v want %v", tt.in, got, tt.want)
	}
}

func TestCapPings(t *testing.T) {
	pings := testutil.DrivingPings(testutil.Start, 10)

	assert.Len(t, capPings(pings, 0), 10)
	assert.Len(t, capPings(pings, 20), 10)
	capped := capPings(pings, 3)
	require.Len(t, capped, 3)
	assert.Equal(t, pings[7].Time(), capped[0].Time())
}

func TestDateRange(t *testing.T) {
	pings := testutil.DrivingPings(testutil.Start, 3)

	assert.Equal(t, "02/06/2025 - 02/06/2025", dateRange(time.Time{}, time.Time{}, pings, time.UTC))
	assert.Equal(t, "01/06/2025 - 02/06/2025",
		dateRange(testutil.Start.AddDate(0, 0, -1), time.Time{}, pings, time.UTC))
	assert.Empty(t, dateRange(time.Time{}, time.Time{}, nil, time.UTC))
}

func TestLoadBundle_Sorted(t *testing.T) {
	b, err := loadBundle(writeBundle(t, t.TempDir()))
	require.NoError(t, err)
	for i := 1; i < len(b.Pings); i++ {
		assert.False(t, b.Pings[i].Time().Before(b.Pings[i-1].Time()), "ping %d out of order", i)
	}

	_, err = loadBundle(filepath.Join(t.TempDir(), "bundle.csv"))
	assert.ErrorContains(t, err, ".json")
}
