package engine

import (
	"time"

	"github.com/speedwagon-io/satalert/internal/model"
)

var t0 = time.Date(2018, 1, 1, 23, 1, 5, int(time.Millisecond), time.UTC)

func batt(sat int, at time.Time, raw float64) model.TelemetryReading {
	return model.TelemetryReading{
		Timestamp:       at,
		SatelliteID:     sat,
		RedHighLimit:    17,
		YellowHighLimit: 15,
		YellowLowLimit:  9,
		RedLowLimit:     8,
		RawValue:        raw,
		Component:       model.ComponentBattery,
	}
}

func tstat(sat int, at time.Time, raw float64) model.TelemetryReading {
	return model.TelemetryReading{
		Timestamp:       at,
		SatelliteID:     sat,
		RedHighLimit:    101,
		YellowHighLimit: 98,
		YellowLowLimit:  25,
		RedLowLimit:     20,
		RawValue:        raw,
		Component:       model.ComponentThermostat,
	}
}

func after(d time.Duration) time.Time { return t0.Add(d) }
