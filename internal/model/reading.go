package model

import "time"

const (
	ComponentBattery    = "BATT"
	ComponentThermostat = "TSTAT"
)

// TelemetryReading is one parsed input record. Yellow limits are carried
// through unevaluated.
type TelemetryReading struct {
	Timestamp       time.Time `json:"timestamp"`
	SatelliteID     int       `json:"satelliteId"`
	RedHighLimit    float64   `json:"redHighLimit"`
	YellowHighLimit float64   `json:"yellowHighLimit"`
	YellowLowLimit  float64   `json:"yellowLowLimit"`
	RedLowLimit     float64   `json:"redLowLimit"`
	RawValue        float64   `json:"rawValue"`
	Component       string    `json:"component"`
}

type GroupKey struct {
	SatelliteID int
	Component   string
}

func (r TelemetryReading) Key() GroupKey {
	return GroupKey{SatelliteID: r.SatelliteID, Component: r.Component}
}
