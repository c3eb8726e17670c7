package units

import (
	"fmt"
	"strings"
	"time"
)

// CommonTimezones is a curated list of the zones fleets are usually operated
// in, ordered from west to east.
var CommonTimezones = []string{
	"America/Tijuana",     // -08:00/-07:00
	"America/Hermosillo",  // -07:00
	"America/Mexico_City", // -06:00
	"America/Guatemala",   // -06:00
	"America/Costa_Rica",  // -06:00
	"America/Bogota",      // -05:00
	"America/Lima",        // -05:00
	"America/Guayaquil",   // -05:00
	"America/Panama",      // -05:00
	"America/New_York",    // -05:00/-04:00
	"America/Caracas",     // -04:00
	"America/La_Paz",      // -04:00
	"America/Santo_Domingo",
	"America/Santiago", // -04:00/-03:00
	"America/Asuncion", // -03:00
	"America/Argentina/Buenos_Aires",
	"America/Montevideo", // -03:00
	"America/Sao_Paulo",  // -03:00
	"UTC",                // +00:00
	"Atlantic/Canary",    // +00:00/+01:00
	"Europe/Madrid",      // +01:00/+02:00
}

// IsTimezoneValid checks if the given timezone is valid by attempting to load it from the tz database
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// IsCommonTimezone checks if the given timezone is in the curated list
func IsCommonTimezone(tz string) bool {
	for _, commonTz := range CommonTimezones {
		if tz == commonTz {
			return true
		}
	}
	return false
}

// GetValidTimezonesString returns a comma-separated string of common timezones for error messages
func GetValidTimezonesString() string {
	return strings.Join(CommonTimezones, ", ")
}

// LoadLocation resolves a tz database name. An empty name means UTC.
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return loc, nil
}

// GetTimezoneLabel returns a human-readable label for the timezone: the
// city part of the name and the zone's current UTC offset.
func GetTimezoneLabel(tz string, at time.Time) string {
	loc, err := LoadLocation(tz)
	if err != nil {
		return tz
	}
	name := loc.String()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "_", " ")
	_, off := at.In(loc).Zone()
	sign := '+'
	if off < 0 {
		sign = '-'
		off = -off
	}
	return fmt.Sprintf("%s (%c%02d:%02d)", name, sign, off/3600, off%3600/60)
}
