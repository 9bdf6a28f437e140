package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/speedwagon-io/satalert/internal/model"
)

const metricPrefix = "satalert_"

// Metrics holds run counters on a private registry. Nothing is served; the
// registry is flushed to a node-exporter textfile at the end of a run.
type Metrics struct {
	registry *prometheus.Registry

	readings    prometheus.Counter
	violations  prometheus.Counter
	groups      prometheus.Counter
	alerts      *prometheus.CounterVec
	runDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "readings_total",
			Help: "Telemetry readings ingested",
		}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "violations_total",
			Help: "Readings classified as violations",
		}),
		groups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "groups_total",
			Help: "Satellite/component groups scanned",
		}),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_total",
				Help: "Alerts emitted by severity",
			},
			[]string{"severity"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "run_duration_seconds",
			Help:    "Wall time of a detection run",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(m.readings, m.violations, m.groups, m.alerts, m.runDuration)

	// Pre-create both series so a quiet run still reports zeroes.
	m.alerts.WithLabelValues(string(model.SeverityRedLow))
	m.alerts.WithLabelValues(string(model.SeverityRedHigh))

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRun(readings, violations, groups int, alerts []model.Alert, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.readings.Add(float64(readings))
	m.violations.Add(float64(violations))
	m.groups.Add(float64(groups))
	for _, a := range alerts {
		m.alerts.WithLabelValues(string(a.Severity)).Inc()
	}
	m.runDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
