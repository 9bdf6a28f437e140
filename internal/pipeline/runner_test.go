package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/satalert/internal/config"
	"github.com/speedwagon-io/satalert/internal/engine"
	"github.com/speedwagon-io/satalert/internal/ingest"
	"github.com/speedwagon-io/satalert/internal/lib/logger/sl"
	"github.com/speedwagon-io/satalert/internal/metrics"
	"github.com/speedwagon-io/satalert/internal/model"
)

var t0 = time.Date(2018, 1, 1, 23, 1, 5, 0, time.UTC)

type staticSource struct {
	readings []model.TelemetryReading
	err      error
}

func (s *staticSource) Readings(context.Context) ([]model.TelemetryReading, error) {
	return s.readings, s.err
}
func (s *staticSource) Name() string { return "static" }
func (s *staticSource) Close() error { return nil }

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, report *model.AlertReport) error {
	return m.Called(report).Error(0)
}

func (m *mockSender) Close() error { return nil }

func battViolations(sat int, offsets ...time.Duration) []model.TelemetryReading {
	var out []model.TelemetryReading
	for _, off := range offsets {
		out = append(out, model.TelemetryReading{
			Timestamp:   t0.Add(off),
			SatelliteID: sat,
			RedLowLimit: 8,
			RawValue:    7,
			Component:   model.ComponentBattery,
		})
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{Output: config.OutputConfig{Format: "json"}}
}

func TestRunRendersAndDelivers(t *testing.T) {
	src := &staticSource{readings: battViolations(1000, 0, time.Minute, 4*time.Minute)}
	s := new(mockSender)
	s.On("Send", mock.MatchedBy(func(r *model.AlertReport) bool {
		return r.Source == "static" && len(r.Alerts) == 1
	})).Return(nil).Once()

	cfg := testConfig()
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "satalert.prom")

	runner := NewRunner(sl.Discard(), cfg, src, engine.New(sl.Discard(), engine.Options{}), s, metrics.New())

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)
	require.True(t, summary.Delivered)
	require.Equal(t, runner.RunID(), summary.RunID)
	require.Equal(t, 3, summary.Violations)

	var alerts []model.Alert
	require.NoError(t, json.Unmarshal(out.Bytes(), &alerts))
	require.Equal(t, []model.Alert{{
		SatelliteID: 1000,
		Severity:    model.SeverityRedLow,
		Component:   "BATT",
		Timestamp:   t0,
	}}, alerts)

	prom, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	require.Contains(t, string(prom), "satalert_violations_total 3")
	s.AssertExpectations(t)
}

func TestRunSkipsDeliveryWithoutAlerts(t *testing.T) {
	src := &staticSource{readings: battViolations(1000, 0, time.Minute, 6*time.Minute)}
	s := new(mockSender)

	runner := NewRunner(sl.Discard(), testConfig(), src, engine.New(sl.Discard(), engine.Options{}), s, nil)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)
	require.False(t, summary.Delivered)
	require.Empty(t, summary.Alerts)
	require.Equal(t, "[]\n", out.String())
	s.AssertNotCalled(t, "Send", mock.Anything)
}

func TestRunDeliveryFailureKeepsOutput(t *testing.T) {
	src := &staticSource{readings: battViolations(7, 0, time.Second, 2*time.Second)}
	s := new(mockSender)
	s.On("Send", mock.Anything).Return(errors.New("webhook down"))

	runner := NewRunner(sl.Discard(), testConfig(), src, engine.New(sl.Discard(), engine.Options{}), s, nil)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)
	require.ErrorIs(t, err, ErrDelivery)
	require.Len(t, summary.Alerts, 1)
	require.Contains(t, out.String(), `"satelliteId": 7`)
}

func TestRunSourceError(t *testing.T) {
	srcErr := &ingest.LineError{Line: 2, Err: ingest.ErrFieldCount}
	runner := NewRunner(sl.Discard(), testConfig(), &staticSource{err: srcErr}, engine.New(sl.Discard(), engine.Options{}), nil, nil)

	var out bytes.Buffer
	_, err := runner.Run(context.Background(), &out)
	require.ErrorIs(t, err, ingest.ErrFieldCount)
	require.Zero(t, out.Len())
}

func TestRunUsesConfiguredEngineParameters(t *testing.T) {
	src := &staticSource{readings: battViolations(1, 0, 90*time.Second)}
	d := engine.New(sl.Discard(), engine.Options{Window: 2 * time.Minute, Threshold: 2})
	runner := NewRunner(sl.Discard(), testConfig(), src, d, nil, nil)

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), &out)
	require.NoError(t, err)
	require.Len(t, summary.Alerts, 1)
	require.False(t, summary.Delivered)
}
