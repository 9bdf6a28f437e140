package model

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityRedLow  Severity = "RED LOW"
	SeverityRedHigh Severity = "RED HIGH"
)

// SeverityFor maps a violating component to its severity. Only BATT and
// TSTAT can violate, so everything that is not BATT reports RED HIGH.
func SeverityFor(component string) Severity {
	if component == ComponentBattery {
		return SeverityRedLow
	}
	return SeverityRedHigh
}

type Alert struct {
	SatelliteID int       `json:"satelliteId" yaml:"satelliteId"`
	Severity    Severity  `json:"severity" yaml:"severity"`
	Component   string    `json:"component" yaml:"component"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// AlertReport wraps the alerts of one run for delivery.
type AlertReport struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
	Alerts      []Alert   `json:"alerts"`
}

func NewAlertReport(runID, source string, alerts []Alert) *AlertReport {
	if alerts == nil {
		alerts = []Alert{}
	}
	return &AlertReport{
		ID:          uuid.New().String(),
		RunID:       runID,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Alerts:      alerts,
	}
}

func NewRunID() string {
	return uuid.New().String()
}
