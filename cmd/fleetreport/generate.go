package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/fleet.report/internal/config"
	"github.com/banshee-data/fleet.report/internal/db"
	"github.com/banshee-data/fleet.report/internal/monitoring"
	"github.com/banshee-data/fleet.report/internal/pgsource"
	"github.com/banshee-data/fleet.report/internal/preview"
	"github.com/banshee-data/fleet.report/internal/report"
	"github.com/banshee-data/fleet.report/internal/security"
	"github.com/banshee-data/fleet.report/internal/snapshot"
	"github.com/banshee-data/fleet.report/internal/stats"
	"github.com/banshee-data/fleet.report/internal/telemetry"
	"github.com/banshee-data/fleet.report/internal/theme"
	"github.com/banshee-data/fleet.report/internal/timeutil"
	"github.com/banshee-data/fleet.report/internal/units"
)

const rangeLayout = "02/01/2006"

type generateFlags struct {
	configPath  string
	input       string
	dbPath      string
	pgURL       string
	deviceID    string
	driverID    string
	from, to    string
	variant     string
	sections    string
	theme       string
	units       string
	timezone    string
	out         string
	previewPath string
	noSnapshots bool
}

func parseGenerateFlags(args []string) (*generateFlags, error) {
	f := &generateFlags{}
	fs := newFlagSet("generate")
	fs.StringVar(&f.configPath, "config", "", "report config JSON (defaults apply when empty)")
	fs.StringVar(&f.input, "input", "", "telemetry bundle JSON; takes precedence over databases")
	fs.StringVar(&f.dbPath, "db", os.Getenv(envDBPath), "sqlite telemetry database (env "+envDBPath+")")
	fs.StringVar(&f.pgURL, "pg", os.Getenv(envPGURL), "postgres telemetry URL (env "+envPGURL+")")
	fs.StringVar(&f.deviceID, "device", "", "device id")
	fs.StringVar(&f.driverID, "driver", "", "assigned driver id, enables the driver ranking")
	fs.StringVar(&f.from, "from", "", "window start (2006-01-02 or RFC3339)")
	fs.StringVar(&f.to, "to", "", "window end (2006-01-02 or RFC3339, dates are inclusive)")
	fs.StringVar(&f.variant, "variant", string(report.Full), "report layout: full, history or stats")
	fs.StringVar(&f.sections, "sections", "", "comma separated stats sections: "+strings.Join(report.SectionIDs(), ","))
	fs.StringVar(&f.theme, "theme", "", "theme override: light or dark")
	fs.StringVar(&f.units, "units", "", "speed units override: "+units.GetValidUnitsString())
	fs.StringVar(&f.timezone, "tz", "", "timezone override, e.g. America/Bogota")
	fs.StringVar(&f.out, "out", "", "output PDF path (default: output_dir/<device>_<variant>_<time>.pdf)")
	fs.StringVar(&f.previewPath, "preview", "", "also write an HTML preview of the statistics")
	fs.BoolVar(&f.noSnapshots, "no-snapshots", false, "skip map and chart images")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// reportConfig loads the config file and applies flag overrides.
func (f *generateFlags) reportConfig() (*config.ReportConfig, error) {
	cfg := config.EmptyReportConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadReportConfig(f.configPath); err != nil {
			return nil, err
		}
	}
	if f.theme != "" {
		cfg.Theme = &f.theme
	}
	if f.units != "" {
		cfg.Units = &f.units
	}
	if f.timezone != "" {
		cfg.Timezone = &f.timezone
	}
	if f.noSnapshots {
		off := false
		cfg.Snapshots = &off
	}
	if f.sections != "" {
		cfg.Sections = splitList(f.sections)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBound reads a date or RFC3339 instant. A bare date is the start of
// that day in loc, or its last millisecond when end is set.
func parseBound(s string, loc *time.Location, end bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want 2006-01-02 or RFC3339", s)
	}
	if end {
		t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return t, nil
}

// openedSource is the telemetry source the flags name. store is the sqlite
// database when one was given, used for report records.
type openedSource struct {
	src      telemetry.Source
	store    *db.DB
	driverID string
	close    func()
}

func openSource(ctx context.Context, f *generateFlags) (*openedSource, error) {
	o := &openedSource{driverID: f.driverID, close: func() {}}

	if f.dbPath != "" {
		store, err := db.NewDB(f.dbPath)
		if err != nil {
			return nil, err
		}
		o.store = store
		o.src = store
		o.close = func() { store.Close() }
	}

	switch {
	case f.input != "":
		b, err := loadBundle(f.input)
		if err != nil {
			o.close()
			return nil, err
		}
		o.src = bundleSource{b}
		if o.driverID == "" {
			o.driverID = b.AssignedDriverID
		}
		if f.deviceID == "" {
			f.deviceID = b.Device.ID
		}
	case f.pgURL != "":
		pool, err := pgsource.Connect(ctx, f.pgURL)
		if err != nil {
			o.close()
			return nil, err
		}
		o.src = pgsource.New(pool)
		prev := o.close
		o.close = func() { pool.Close(); prev() }
	case o.store == nil:
		return nil, fmt.Errorf("no telemetry source: pass -input, -db (%s) or -pg (%s)", envDBPath, envPGURL)
	}
	return o, nil
}

func findDriver(drivers []telemetry.Driver, id string) *telemetry.Driver {
	if id == "" {
		return nil
	}
	for i := range drivers {
		if drivers[i].ID == id {
			d := drivers[i]
			return &d
		}
	}
	return nil
}

// capPings keeps the newest limit pings. Zero disables the cap.
func capPings(pings []telemetry.Ping, limit int) []telemetry.Ping {
	if limit <= 0 || len(pings) <= limit {
		return pings
	}
	return pings[len(pings)-limit:]
}

func dateRange(from, to time.Time, pings []telemetry.Ping, loc *time.Location) string {
	if from.IsZero() && len(pings) > 0 {
		from = pings[0].Time()
	}
	if to.IsZero() && len(pings) > 0 {
		to = pings[len(pings)-1].Time()
	}
	if from.IsZero() || to.IsZero() {
		return ""
	}
	return from.In(loc).Format(rangeLayout) + " - " + to.In(loc).Format(rangeLayout)
}

func runGenerate(ctx context.Context, args []string, stdout io.Writer) (err error) {
	f, err := parseGenerateFlags(args)
	if err != nil {
		return err
	}
	variant := report.Variant(f.variant)
	if !validVariant(variant) {
		return fmt.Errorf("unknown variant %q", f.variant)
	}
	cfg, err := f.reportConfig()
	if err != nil {
		return err
	}
	loc, err := units.LoadLocation(cfg.GetTimezone())
	if err != nil {
		return err
	}
	from, err := parseBound(f.from, loc, false)
	if err != nil {
		return err
	}
	to, err := parseBound(f.to, loc, true)
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("-to %s is before -from %s", f.to, f.from)
	}

	opened, err := openSource(ctx, f)
	if err != nil {
		return err
	}
	defer opened.close()
	if f.deviceID == "" {
		return fmt.Errorf("-device is required")
	}

	runID := uuid.NewString()
	ctx = monitoring.WithRunID(ctx, runID)
	defer monitoring.Time(ctx, "cli.generate")(&err)

	src := opened.src
	device, err := src.Device(ctx, f.deviceID)
	if err != nil {
		return err
	}
	pings, err := src.Pings(ctx, device.ID, from, to)
	if err != nil {
		return err
	}
	if n := len(pings); n > cfg.GetMaxPings() && cfg.GetMaxPings() > 0 {
		monitoring.Logf("run_id=%s capping %d pings to newest %d", runID, n, cfg.GetMaxPings())
		pings = capPings(pings, cfg.GetMaxPings())
	}
	routes, err := src.Routes(ctx, device.ID, from, to)
	if err != nil {
		return err
	}
	var drivers []telemetry.Driver
	if device.ClientID != "" {
		if drivers, err = src.Drivers(ctx, device.ClientID); err != nil {
			return err
		}
	}
	assigned := findDriver(drivers, opened.driverID)
	if opened.driverID != "" && assigned == nil {
		monitoring.Logf("run_id=%s driver %s not found for client %s", runID, opened.driverID, device.ClientID)
	}

	opts := report.Options{
		Device:         device,
		DateRange:      dateRange(from, to, pings, loc),
		Pings:          pings,
		Routes:         routes,
		Drivers:        drivers,
		AssignedDriver: assigned,
		Theme:          cfg.GetTheme(),
		Units:          cfg.GetUnits(),
		Location:       loc,
		Attribution:    cfg.GetAttribution(),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	clock := timeutil.RealClock{}
	composer := &report.Composer{Clock: clock}
	if cfg.GetSnapshots() {
		th, err := theme.Named(opts.Theme)
		if err != nil {
			return err
		}
		composer.Snapshots = snapshot.NewRenderer(th, loc, opts.Units)
	}

	pdf, err := composer.Generate(ctx, variant, opts, cfg.Sections)
	if err != nil {
		return err
	}

	outPath, err := outputPath(f.out, cfg.GetOutputDir(), device, variant, clock.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(stdout, outPath)

	if f.previewPath != "" {
		path, err := writePreview(f.previewPath, opts, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
	}

	if opened.store != nil {
		rec := &db.ReportRecord{
			RunID:     runID,
			DeviceID:  device.ID,
			Variant:   string(variant),
			DateRange: opts.DateRange,
			Filepath:  outPath,
			Filename:  filepath.Base(outPath),
			Theme:     opts.Theme,
			Timezone:  cfg.GetTimezone(),
			Units:     opts.Units,
			Sections:  strings.Join(cfg.Sections, ","),
			SizeBytes: int64(len(pdf)),
			CreatedAt: clock.Now(),
		}
		if err := opened.store.CreateReportRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func validVariant(v report.Variant) bool {
	for _, known := range report.Variants {
		if v == known {
			return true
		}
	}
	return false
}

func outputPath(explicit, dir string, device telemetry.Device, v report.Variant, at time.Time) (string, error) {
	if explicit != "" {
		return security.OutputPath(filepath.Dir(explicit), filepath.Base(explicit))
	}
	name := device.Name
	if name == "" {
		name = device.ID
	}
	return security.OutputPath(dir, security.ReportFilename(name, string(v), at))
}

func writePreview(path string, opts report.Options, cfg *config.ReportConfig) (string, error) {
	ds := stats.Synthesize(opts.Pings, opts.Routes, stats.Options{
		Location:       opts.Location,
		AssignedDriver: opts.AssignedDriver,
		Drivers:        opts.Drivers,
	})

	path, err := security.OutputPath(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return "", err
	}
	w, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create preview: %w", err)
	}
	defer w.Close()
	err = preview.Render(w, ds, preview.Options{
		Title: opts.Device.Name,
		Theme: cfg.GetTheme(),
		Units: cfg.GetUnits(),
	})
	return path, err
}
