// Package telemetry holds the GPS ping model and the pure functions that turn a
// ping stream into operating-state segments.
package telemetry

import "time"

// Status is the inferred operating state of a tracked vehicle at one ping.
type Status string

const (
	StatusEngineOn  Status = "engine_on"
	StatusMoving    Status = "moving"
	StatusStopped   Status = "stopped"
	StatusEngineOff Status = "engine_off"
)

// Statuses lists every recognised status in display order.
var Statuses = []Status{StatusEngineOn, StatusMoving, StatusStopped, StatusEngineOff}

// Valid reports whether s is one of the four recognised statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusEngineOn, StatusMoving, StatusStopped, StatusEngineOff:
		return true
	default:
		return false
	}
}

// Label returns the human-readable label printed in reports.
func (s Status) Label() string {
	switch s {
	case StatusEngineOn:
		return "Motor encendido"
	case StatusMoving:
		return "En movimiento"
	case StatusStopped:
		return "Detenido"
	case StatusEngineOff:
		return "Motor apagado"
	default:
		return string(s)
	}
}

// Ping is one timestamped telemetry sample from a tracked device.
// Nullable fields are pointers; a nil Ignition means the device did not report it.
type Ping struct {
	DeviceID   string    `json:"device_id"`
	ReceivedAt time.Time `json:"received_at"`
	FixTime    time.Time `json:"fix_time"`
	Lat        *float64  `json:"lat,omitempty"`
	Lon        *float64  `json:"lon,omitempty"`
	Speed      *float64  `json:"speed,omitempty"` // km/h
	Course     float64   `json:"course"`
	Satellites int       `json:"satellites"`
	Ignition   *bool     `json:"ignition,omitempty"`
	Odometer   float64   `json:"odometer"` // km
	Status     Status    `json:"status,omitempty"`
}

// Time returns the fix time, falling back to the receive time when the
// device did not report a fix.
func (p Ping) Time() time.Time {
	if p.FixTime.IsZero() {
		return p.ReceivedAt
	}
	return p.FixTime
}

// SpeedOrZero returns the reported speed, treating a missing value as 0.
func (p Ping) SpeedOrZero() float64 {
	if p.Speed == nil {
		return 0
	}
	return *p.Speed
}

// HasPosition reports whether both coordinates are present.
func (p Ping) HasPosition() bool {
	return p.Lat != nil && p.Lon != nil
}

// Segment is a maximal run of consecutive pings sharing one status.
type Segment struct {
	Status   Status        `json:"status"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
	Points   int           `json:"points"`
}

// RouteSummary is a pre-aggregated trip interval supplied by the route service.
type RouteSummary struct {
	Ordinal     int       `json:"ordinal"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DistanceKm  float64   `json:"distance_km"`
	AvgSpeed    float64   `json:"avg_speed"`
	MaxSpeed    float64   `json:"max_speed"`
	MovingHours float64   `json:"moving_hours"`
	IdleHours   float64   `json:"idle_hours"`
	TotalHours  float64   `json:"total_hours"`
	Points      int       `json:"points"`
}

// Device is the pre-resolved directory entry for the tracked asset.
type Device struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Plate      string `json:"plate"`
	IMEI       string `json:"imei"`
	Model      string `json:"model"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	AssetName  string `json:"asset_name"`
	SIM        string `json:"sim"`
}

// Driver is a pre-resolved driver descriptor.
type Driver struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
	Phone    string `json:"phone"`
}

// Float returns a pointer to v. Handy for building pings in code and tests.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
