package engine

import (
	"time"

	"github.com/speedwagon-io/satalert/internal/model"
)

const (
	DefaultWindow    = 5 * time.Minute
	DefaultThreshold = 3
)

// Scan looks for the earliest window of at least threshold violations whose
// span does not exceed window. The input must be sorted by timestamp. The
// alert carries the window's first reading; scanning stops at the first hit.
func Scan(violations []model.TelemetryReading, window time.Duration, threshold int) (model.Alert, bool) {
	if threshold < 1 {
		threshold = 1
	}

	start := 0
	for end := range violations {
		for start < end && violations[end].Timestamp.Sub(violations[start].Timestamp) > window {
			start++
		}

		if end-start+1 >= threshold {
			return NewAlert(violations[start]), true
		}
	}

	return model.Alert{}, false
}

func NewAlert(r model.TelemetryReading) model.Alert {
	return model.Alert{
		SatelliteID: r.SatelliteID,
		Severity:    model.SeverityFor(r.Component),
		Component:   r.Component,
		Timestamp:   r.Timestamp,
	}
}
