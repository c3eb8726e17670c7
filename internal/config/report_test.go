package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptyReportConfigDefaults(t *testing.T) {
	cfg := EmptyReportConfig()

	if got := cfg.GetTheme(); got != "light" {
		t.Errorf("GetTheme() = %q, want light", got)
	}
	if got := cfg.GetUnits(); got != "kmph" {
		t.Errorf("GetUnits() = %q, want kmph", got)
	}
	if got := cfg.GetTimezone(); got != "UTC" {
		t.Errorf("GetTimezone() = %q, want UTC", got)
	}
	if got := cfg.GetMaxPings(); got != DefaultMaxPings {
		t.Errorf("GetMaxPings() = %d, want %d", got, DefaultMaxPings)
	}
	if got := cfg.GetAttribution(); got != "" {
		t.Errorf("GetAttribution() = %q, want empty", got)
	}
	if !cfg.GetSnapshots() {
		t.Error("GetSnapshots() = false, want true")
	}
	if got := cfg.GetOutputDir(); got != "output" {
		t.Errorf("GetOutputDir() = %q, want output", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty config should validate: %v", err)
	}
}

func TestLoadReportConfig(t *testing.T) {
	path := writeConfig(t, "report.json", `{
  "theme": "dark",
  "units": "mph",
  "timezone": "America/Mexico_City",
  "max_pings": 1000,
  "attribution": "Transportes Andinos",
  "snapshots": false,
  "output_dir": "/tmp/reports",
  "sections": ["resumen", "velocidad"]
}`)

	cfg, err := LoadReportConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetTheme() != "dark" {
		t.Errorf("GetTheme() = %q, want dark", cfg.GetTheme())
	}
	if cfg.GetUnits() != "mph" {
		t.Errorf("GetUnits() = %q, want mph", cfg.GetUnits())
	}
	if cfg.GetTimezone() != "America/Mexico_City" {
		t.Errorf("GetTimezone() = %q", cfg.GetTimezone())
	}
	if cfg.GetMaxPings() != 1000 {
		t.Errorf("GetMaxPings() = %d, want 1000", cfg.GetMaxPings())
	}
	if cfg.GetAttribution() != "Transportes Andinos" {
		t.Errorf("GetAttribution() = %q", cfg.GetAttribution())
	}
	if cfg.GetSnapshots() {
		t.Error("GetSnapshots() = true, want false")
	}
	if cfg.GetOutputDir() != "/tmp/reports" {
		t.Errorf("GetOutputDir() = %q", cfg.GetOutputDir())
	}
	if strings.Join(cfg.Sections, ",") != "resumen,velocidad" {
		t.Errorf("Sections = %v", cfg.Sections)
	}
}

func TestLoadReportConfig_Partial(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"units": "knots"}`)

	cfg, err := LoadReportConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetUnits() != "knots" {
		t.Errorf("GetUnits() = %q, want knots", cfg.GetUnits())
	}
	if cfg.GetTheme() != "light" || cfg.GetMaxPings() != DefaultMaxPings {
		t.Error("omitted fields should keep defaults")
	}
}

func TestLoadReportConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "report.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"theme":`, "failed to parse"},
		{"unknown theme", "theme.json", `{"theme": "sepia"}`, "unknown theme"},
		{"bad units", "units.json", `{"units": "furlongs"}`, "invalid units"},
		{"bad timezone", "tz.json", `{"timezone": "Mars/Olympus"}`, "invalid timezone"},
		{"negative cap", "cap.json", `{"max_pings": -1}`, "max_pings"},
		{"empty output dir", "out.json", `{"output_dir": ""}`, "output_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadReportConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadReportConfig_Missing(t *testing.T) {
	if _, err := LoadReportConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadReportConfig_TooLarge(t *testing.T) {
	big := `{"attribution": "` + strings.Repeat("x", 1024*1024) + `"}`
	path := writeConfig(t, "big.json", big)
	_, err := LoadReportConfig(path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestValidate_ZeroCapAllowed(t *testing.T) {
	cfg := &ReportConfig{MaxPings: ptrInt(0), Units: ptrString("")}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if cfg.GetMaxPings() != 0 {
		t.Errorf("GetMaxPings() = %d, want 0", cfg.GetMaxPings())
	}
	if cfg.GetUnits() != "kmph" {
		t.Errorf("GetUnits() = %q, want kmph", cfg.GetUnits())
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetTimezone() != "America/Bogota" {
		t.Errorf("GetTimezone() = %q, want America/Bogota", cfg.GetTimezone())
	}
	if cfg.GetMaxPings() != DefaultMaxPings {
		t.Errorf("GetMaxPings() = %d, want %d", cfg.GetMaxPings(), DefaultMaxPings)
	}
}
