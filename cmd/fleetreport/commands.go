package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/banshee-data/fleet.report/internal/db"
)

// runImport loads a telemetry bundle into the sqlite store.
func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("import")
	dbPath := fs.String("db", os.Getenv(envDBPath), "sqlite telemetry database (env "+envDBPath+")")
	input := fs.String("input", "", "telemetry bundle JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" || *input == "" {
		return fmt.Errorf("import needs -db and -input")
	}

	b, err := loadBundle(*input)
	if err != nil {
		return err
	}
	store, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpsertDevice(ctx, b.Device); err != nil {
		return err
	}
	for _, d := range b.Drivers {
		if err := store.UpsertDriver(ctx, d); err != nil {
			return err
		}
	}
	if err := store.InsertPings(ctx, b.Device.ID, b.Pings); err != nil {
		return err
	}
	if err := store.InsertRoutes(ctx, b.Device.ID, b.Routes); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "imported device %s: %d pings, %d routes, %d drivers\n",
		b.Device.ID, len(b.Pings), len(b.Routes), len(b.Drivers))
	return nil
}

// runHistory lists recently generated reports.
func runHistory(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("history")
	dbPath := fs.String("db", os.Getenv(envDBPath), "sqlite telemetry database (env "+envDBPath+")")
	deviceID := fs.String("device", "", "only this device")
	limit := fs.Int("limit", 20, "maximum records")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("history needs -db")
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.GetRecentReportRecords(ctx, *deviceID, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tDEVICE\tVARIANT\tRANGE\tSIZE\tFILE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.DeviceID, r.Variant, r.DateRange, r.SizeBytes, r.Filepath)
	}
	return tw.Flush()
}
