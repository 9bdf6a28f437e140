package engine

import (
	"cmp"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/speedwagon-io/satalert/internal/model"
)

type Options struct {
	Window    time.Duration
	Threshold int
	// Workers above 1 scans groups concurrently.
	Workers int
}

type Result struct {
	Alerts     []model.Alert
	Readings   int
	Violations int
	Groups     int
}

type Detector struct {
	log       *slog.Logger
	window    time.Duration
	threshold int
	workers   int
}

func New(log *slog.Logger, opts Options) *Detector {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Detector{
		log:       log.With(slog.String("component", "engine")),
		window:    opts.Window,
		threshold: opts.Threshold,
		workers:   opts.Workers,
	}
}

// Detect runs the default detector without logging.
func Detect(readings []model.TelemetryReading) []model.Alert {
	d := New(slog.New(slog.NewTextHandler(io.Discard, nil)), Options{})
	return d.Detect(readings).Alerts
}

func (d *Detector) Window() time.Duration { return d.window }

func (d *Detector) Threshold() int { return d.threshold }

// Detect classifies, groups and scans a batch. Alerts come back ordered by
// satellite then component regardless of how groups were processed.
func (d *Detector) Detect(readings []model.TelemetryReading) Result {
	groups := GroupViolations(readings)

	res := Result{
		Readings: len(readings),
		Groups:   len(groups),
	}
	for _, v := range groups {
		res.Violations += len(v)
	}

	if d.workers > 1 && len(groups) > 1 {
		res.Alerts = d.scanConcurrent(groups)
	} else {
		res.Alerts = d.scanSequential(groups)
	}

	slices.SortFunc(res.Alerts, func(a, b model.Alert) int {
		if c := cmp.Compare(a.SatelliteID, b.SatelliteID); c != 0 {
			return c
		}
		return cmp.Compare(a.Component, b.Component)
	})

	d.log.Debug("batch scanned",
		slog.Int("readings", res.Readings),
		slog.Int("violations", res.Violations),
		slog.Int("groups", res.Groups),
		slog.Int("alerts", len(res.Alerts)),
	)

	return res
}

func (d *Detector) scanGroup(key model.GroupKey, violations []model.TelemetryReading) (model.Alert, bool) {
	alert, ok := Scan(SortByTimestamp(violations), d.window, d.threshold)
	if ok {
		d.log.Debug("alert triggered",
			slog.Int("satellite_id", key.SatelliteID),
			slog.String("satellite_component", key.Component),
			slog.Time("trigger", alert.Timestamp),
		)
	}
	return alert, ok
}

func (d *Detector) scanSequential(groups map[model.GroupKey][]model.TelemetryReading) []model.Alert {
	alerts := make([]model.Alert, 0, len(groups))
	for key, violations := range groups {
		if alert, ok := d.scanGroup(key, violations); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

func (d *Detector) scanConcurrent(groups map[model.GroupKey][]model.TelemetryReading) []model.Alert {
	var wg sync.WaitGroup
	results := make(chan model.Alert, len(groups))
	sem := make(chan struct{}, d.workers)

	for key, violations := range groups {
		wg.Add(1)
		go func(k model.GroupKey, v []model.TelemetryReading) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if alert, ok := d.scanGroup(k, v); ok {
				results <- alert
			}
		}(key, violations)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	alerts := make([]model.Alert, 0, len(groups))
	for alert := range results {
		alerts = append(alerts, alert)
	}
	return alerts
}
