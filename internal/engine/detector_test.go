package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/satalert/internal/lib/logger/sl"
	"github.com/speedwagon-io/satalert/internal/model"
)

// sampleBatch mirrors the reference input: satellite 1000 trips both
// components, satellite 1001 never reaches the threshold.
func sampleBatch() []model.TelemetryReading {
	return []model.TelemetryReading{
		tstat(1001, t0, 99.9),
		batt(1000, after(14*time.Millisecond), 7.8),
		tstat(1000, after(15*time.Millisecond), 102.9),
		batt(1001, after(20*time.Millisecond), 7.8),
		tstat(1000, after(7*time.Second+ms(915)), 101.9),
		tstat(1001, after(47*time.Second+ms(75)), 101.7),
		tstat(1001, after(59*time.Second+ms(943)), 101.8),
		batt(1000, after(2*time.Minute+ms(19)), 9.5),
		tstat(1000, after(3*time.Minute+ms(17)), 102.7),
		batt(1001, after(4*time.Minute+ms(16)), 7.9),
		batt(1000, after(4*time.Minute+ms(20)), 7.2),
		batt(1000, after(4*time.Minute+ms(25)), 7.9),
		batt(1001, after(4*time.Minute+ms(60)), 10),
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestDetectSampleBatch(t *testing.T) {
	d := New(sl.Discard(), Options{})
	res := d.Detect(sampleBatch())

	require.Equal(t, 13, res.Readings)
	require.Equal(t, 4, res.Groups)
	require.Equal(t, []model.Alert{
		{SatelliteID: 1000, Severity: model.SeverityRedLow, Component: "BATT", Timestamp: after(14 * time.Millisecond)},
		{SatelliteID: 1000, Severity: model.SeverityRedHigh, Component: "TSTAT", Timestamp: after(15 * time.Millisecond)},
	}, res.Alerts)
}

func TestDetectEmptyInput(t *testing.T) {
	res := New(sl.Discard(), Options{}).Detect(nil)
	require.Empty(t, res.Alerts)
	require.Zero(t, res.Groups)
	require.Empty(t, Detect([]model.TelemetryReading{}))
}

func TestDetectGroupsDoNotCrossContaminate(t *testing.T) {
	// Two BATT and two TSTAT violations on the same satellite inside one
	// minute: four violations, but neither group reaches three.
	readings := []model.TelemetryReading{
		batt(1000, t0, 1),
		tstat(1000, after(10*time.Second), 200),
		batt(1000, after(20*time.Second), 1),
		tstat(1000, after(30*time.Second), 200),
	}
	require.Empty(t, Detect(readings))

	// Same component on different satellites is also independent.
	readings = []model.TelemetryReading{
		batt(1, t0, 1),
		batt(2, after(time.Second), 1),
		batt(1, after(2*time.Second), 1),
	}
	require.Empty(t, Detect(readings))
}

func TestDetectIgnoresNonViolations(t *testing.T) {
	readings := []model.TelemetryReading{
		batt(5, t0, 1),
		batt(5, after(time.Second), 50),
		batt(5, after(2*time.Second), 50),
		batt(5, after(3*time.Second), 1),
	}
	res := New(sl.Discard(), Options{}).Detect(readings)
	require.Equal(t, 2, res.Violations)
	require.Empty(t, res.Alerts)
}

func TestDetectOrderIndependent(t *testing.T) {
	base := sampleBatch()
	want := Detect(base)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.TelemetryReading(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, want, Detect(shuffled))
	}
}

func TestDetectConcurrentMatchesSequential(t *testing.T) {
	var readings []model.TelemetryReading
	for sat := 1; sat <= 50; sat++ {
		for i := 0; i < 4; i++ {
			at := after(time.Duration(sat*i) * 40 * time.Second)
			readings = append(readings, batt(sat, at, 1), tstat(sat, at, 500))
		}
	}

	seq := New(sl.Discard(), Options{Workers: 1}).Detect(readings)
	par := New(sl.Discard(), Options{Workers: 8}).Detect(readings)

	require.NotEmpty(t, seq.Alerts)
	require.Equal(t, seq, par)
}

func TestNewAppliesDefaults(t *testing.T) {
	d := New(sl.Discard(), Options{})
	require.Equal(t, DefaultWindow, d.Window())
	require.Equal(t, DefaultThreshold, d.Threshold())

	d = New(sl.Discard(), Options{Window: time.Minute, Threshold: 2})
	require.Equal(t, time.Minute, d.Window())
	require.Equal(t, 2, d.Threshold())
}

func TestDetectDoesNotMutateInput(t *testing.T) {
	in := []model.TelemetryReading{
		batt(1, after(2*time.Minute), 1),
		batt(1, t0, 1),
		batt(1, after(time.Minute), 1),
	}
	snapshot := append([]model.TelemetryReading(nil), in...)

	alerts := Detect(in)

	require.Len(t, alerts, 1)
	require.Equal(t, t0, alerts[0].Timestamp)
	require.Equal(t, snapshot, in)
}
