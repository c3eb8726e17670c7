package telemetry

// MovingSpeedThreshold is the speed (km/h) above which a ping counts as moving.
// Anything at or below it is treated as GPS jitter around a stationary vehicle.
const MovingSpeedThreshold = 2.0

// Classify infers the operating status of pings[i]. The first matching rule wins:
//
//  1. a recognised status hint on the ping is used verbatim
//  2. ignition explicitly off is engine_off
//  3. speed above MovingSpeedThreshold is moving
//  4. the first ping with ignition explicitly on is engine_on
//  5. the last ping with zero speed is engine_off
//  6. anything else is stopped
//
// A nil ignition is unknown and never matches rules 2 or 4. Classify never
// panics; an out-of-range index yields stopped.
func Classify(pings []Ping, i int) Status {
	if i < 0 || i >= len(pings) {
		return StatusStopped
	}
	p := pings[i]

	if p.Status.Valid() {
		return p.Status
	}
	if p.Ignition != nil && !*p.Ignition {
		return StatusEngineOff
	}
	speed := p.SpeedOrZero()
	if speed > MovingSpeedThreshold {
		return StatusMoving
	}
	if i == 0 && p.Ignition != nil && *p.Ignition {
		return StatusEngineOn
	}
	if i == len(pings)-1 && speed == 0 {
		return StatusEngineOff
	}
	return StatusStopped
}

// ClassifyAll classifies every ping in order.
func ClassifyAll(pings []Ping) []Status {
	out := make([]Status, len(pings))
	for i := range pings {
		out[i] = Classify(pings, i)
	}
	return out
}
