// Command fleetreport renders fleet telemetry reports as PDF.
//
//	fleetreport generate -device dev-1 -from 2025-06-01 -to 2025-06-07 -variant stats
//	fleetreport import -input export.json
//	fleetreport history -device dev-1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/banshee-data/fleet.report/internal/monitoring"
	"github.com/banshee-data/fleet.report/internal/version"
)

// Environment variables read when the matching flag is not given.
const (
	envDBPath = "FLEET_DB_PATH"
	envPGURL  = "FLEET_PG_URL"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	monitoring.SetLogger(log.Printf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "generate"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "generate":
		return runGenerate(ctx, args, stdout)
	case "import":
		return runImport(ctx, args, stdout)
	case "history":
		return runHistory(ctx, args, stdout)
	case "version":
		fmt.Fprintln(stdout, "fleetreport", version.Short())
		return nil
	default:
		return fmt.Errorf("unknown command %q (want generate, import, history or version)", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("fleetreport "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
