package telemetry

import (
	"context"
	"time"
)

// Source is the collaborator that supplies pre-resolved telemetry for one
// device and time window. Pings must be returned in chronological order.
type Source interface {
	Device(ctx context.Context, deviceID string) (Device, error)
	Pings(ctx context.Context, deviceID string, from, to time.Time) ([]Ping, error)
	Routes(ctx context.Context, deviceID string, from, to time.Time) ([]RouteSummary, error)
	Drivers(ctx context.Context, clientID string) ([]Driver, error)
}
