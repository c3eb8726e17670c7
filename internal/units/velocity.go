package units

const (
	kmhToMPH   = 0.621371192237334
	kmhToMPS   = 1 / 3.6
	kmhToKnots = 0.539956803455724
)

// ConvertSpeed converts a speed from km/h to the target units.
// Unknown units are treated as km/h.
func ConvertSpeed(speedKMH float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedKMH * kmhToMPH
	case MPS:
		return speedKMH * kmhToMPS
	case KNOTS:
		return speedKMH * kmhToKnots
	default:
		return speedKMH
	}
}

// ConvertDistance converts kilometres to the distance unit paired with
// targetUnits (see DistanceLabel).
func ConvertDistance(km float64, targetUnits string) float64 {
	if targetUnits == MPH {
		return km * kmhToMPH
	}
	return km
}
