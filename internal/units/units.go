// Package units provides shared constants and validation for speed and
// distance units. Telemetry speeds are stored in km/h and distances in km.
package units

import "strings"

// Unit constants
const (
	KMPH  = "kmph"
	KPH   = "kph"
	MPH   = "mph"
	MPS   = "mps"
	KNOTS = "knots"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{KMPH, KPH, MPH, MPS, KNOTS}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// SpeedLabel is the short display suffix for a speed unit.
func SpeedLabel(unit string) string {
	switch unit {
	case MPH:
		return "mph"
	case MPS:
		return "m/s"
	case KNOTS:
		return "kn"
	default:
		return "km/h"
	}
}

// DistanceLabel is the display suffix for distances shown alongside unit.
// Only imperial speeds switch distances to miles.
func DistanceLabel(unit string) string {
	if unit == MPH {
		return "mi"
	}
	return "km"
}
