// Package monitoring holds the diagnostic logger and operation timing helpers.
package monitoring

import (
	"context"
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

type ctxKey string

// RunIDKey tags log lines of one report generation.
const RunIDKey ctxKey = "run_id"

// WithRunID returns ctx carrying id for Time log lines.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// Time starts timing the named operation. Call the returned func with a
// pointer to the operation's error, typically via defer:
//
//	defer monitoring.Time(ctx, "report.full")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	runID, _ := ctx.Value(RunIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)
		if errp != nil && *errp != nil {
			Logf("run_id=%s op=%s dur=%dms err=%v", runID, name, dur.Milliseconds(), *errp)
			return
		}
		Logf("run_id=%s op=%s dur=%dms", runID, name, dur.Milliseconds())
	}
}
