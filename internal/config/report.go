package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/units"
)

// DefaultConfigPath is the path to the canonical report defaults file.
const DefaultConfigPath = "config/report.defaults.json"

// DefaultMaxPings caps the pings fed into one report.
const DefaultMaxPings = 50000

// ReportConfig holds the defaults applied to every generated report. Fields
// omitted from the JSON fall back to the Get* defaults, so partial files
// are safe.
type ReportConfig struct {
	Theme       *string  `json:"theme,omitempty"`
	Units       *string  `json:"units,omitempty"`
	Timezone    *string  `json:"timezone,omitempty"`
	MaxPings    *int     `json:"max_pings,omitempty"`
	Attribution *string  `json:"attribution,omitempty"`
	Snapshots   *bool    `json:"snapshots,omitempty"` // render map and chart images
	OutputDir   *string  `json:"output_dir,omitempty"`
	Sections    []string `json:"sections,omitempty"` // statistics sections, empty for all
}

// EmptyReportConfig returns a ReportConfig with all fields unset.
func EmptyReportConfig() *ReportConfig {
	return &ReportConfig{}
}

// LoadReportConfig loads a ReportConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadReportConfig(path string) (*ReportConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyReportConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *ReportConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/fleetreport/
	}
	for _, path := range candidates {
		if cfg, err := LoadReportConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *ReportConfig) Validate() error {
	if c.Theme != nil {
		if _, err := theme.Named(*c.Theme); err != nil {
			return err
		}
	}

	if c.Units != nil && *c.Units != "" && !units.IsValid(*c.Units) {
		return fmt.Errorf("invalid units %q (valid: %s)", *c.Units, units.GetValidUnitsString())
	}

	if c.Timezone != nil && *c.Timezone != "" && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}

	if c.MaxPings != nil && *c.MaxPings < 0 {
		return fmt.Errorf("max_pings must be non-negative, got %d", *c.MaxPings)
	}

	if c.OutputDir != nil && *c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty when set")
	}

	return nil
}

// GetTheme returns the theme name or the default.
func (c *ReportConfig) GetTheme() string {
	if c.Theme == nil || *c.Theme == "" {
		return theme.Light
	}
	return *c.Theme
}

// GetUnits returns the speed units or the default.
func (c *ReportConfig) GetUnits() string {
	if c.Units == nil || *c.Units == "" {
		return units.KMPH
	}
	return *c.Units
}

// GetTimezone returns the timezone name or the default.
func (c *ReportConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return "UTC"
	}
	return *c.Timezone
}

// GetMaxPings returns the ping cap or the default. Zero disables the cap.
func (c *ReportConfig) GetMaxPings() int {
	if c.MaxPings == nil {
		return DefaultMaxPings
	}
	return *c.MaxPings
}

// GetAttribution returns the footer attribution or the default.
func (c *ReportConfig) GetAttribution() string {
	if c.Attribution == nil {
		return ""
	}
	return *c.Attribution
}

// GetSnapshots returns whether snapshot images are rendered.
func (c *ReportConfig) GetSnapshots() bool {
	if c.Snapshots == nil {
		return true // default
	}
	return *c.Snapshots
}

// GetOutputDir returns the output directory or the default.
func (c *ReportConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return "output"
	}
	return *c.OutputDir
}
