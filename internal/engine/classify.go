package engine

import "github.com/speedwagon-io/satalert/internal/model"

// IsViolation reports whether a reading is out of tolerance. Comparisons are
// strict: a value equal to its red limit is not a violation.
func IsViolation(r model.TelemetryReading) bool {
	switch r.Component {
	case model.ComponentBattery:
		return r.RawValue < r.RedLowLimit
	case model.ComponentThermostat:
		return r.RawValue > r.RedHighLimit
	default:
		return false
	}
}
