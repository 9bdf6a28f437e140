package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/speedwagon-io/satalert/internal/config"
	"github.com/speedwagon-io/satalert/internal/engine"
	"github.com/speedwagon-io/satalert/internal/ingest"
	"github.com/speedwagon-io/satalert/internal/lib/logger/sl"
	"github.com/speedwagon-io/satalert/internal/metrics"
	"github.com/speedwagon-io/satalert/internal/model"
	"github.com/speedwagon-io/satalert/internal/render"
	"github.com/speedwagon-io/satalert/internal/sender"
)

var ErrDelivery = errors.New("alert delivery failed")

type Summary struct {
	RunID      string
	Readings   int
	Violations int
	Groups     int
	Alerts     []model.Alert
	Delivered  bool
}

// Runner drives one batch: read, detect, render, deliver, record metrics.
type Runner struct {
	log      *slog.Logger
	cfg      *config.Config
	source   ingest.Source
	detector *engine.Detector
	sender   sender.Sender
	metrics  *metrics.Metrics
	runID    string
}

// NewRunner wires a run. sender and metrics may be nil.
func NewRunner(
	log *slog.Logger,
	cfg *config.Config,
	source ingest.Source,
	detector *engine.Detector,
	sender sender.Sender,
	metrics *metrics.Metrics,
) *Runner {
	runID := model.NewRunID()
	return &Runner{
		log:      log.With(slog.String("run_id", runID)),
		cfg:      cfg,
		source:   source,
		detector: detector,
		sender:   sender,
		metrics:  metrics,
		runID:    runID,
	}
}

func (r *Runner) RunID() string {
	return r.runID
}

// Run renders alerts to out before attempting delivery, so a delivery
// failure never loses the rendered output.
func (r *Runner) Run(ctx context.Context, out io.Writer) (Summary, error) {
	started := time.Now()

	r.log.Info("starting detection run",
		slog.String("source", r.source.Name()),
		slog.Duration("window", r.detector.Window()),
		slog.Int("threshold", r.detector.Threshold()),
	)

	readings, err := r.source.Readings(ctx)
	if err != nil {
		return Summary{RunID: r.runID}, fmt.Errorf("failed to read telemetry: %w", err)
	}

	res := r.detector.Detect(readings)
	elapsed := time.Since(started)

	summary := Summary{
		RunID:      r.runID,
		Readings:   res.Readings,
		Violations: res.Violations,
		Groups:     res.Groups,
		Alerts:     res.Alerts,
	}

	for _, a := range res.Alerts {
		r.log.Info("alert",
			slog.Int("satellite_id", a.SatelliteID),
			slog.String("severity", string(a.Severity)),
			slog.String("satellite_component", a.Component),
			slog.Time("timestamp", a.Timestamp),
		)
	}

	r.log.Info("detection finished",
		slog.Int("readings", res.Readings),
		slog.Int("violations", res.Violations),
		slog.Int("groups", res.Groups),
		slog.Int("alerts", len(res.Alerts)),
		slog.Duration("elapsed", elapsed),
	)

	if err := render.Render(out, r.cfg.Output.Format, res.Alerts); err != nil {
		return summary, fmt.Errorf("failed to render alerts: %w", err)
	}

	r.recordMetrics(res, elapsed)

	delivered, err := r.deliver(ctx, res.Alerts)
	summary.Delivered = delivered
	if err != nil {
		return summary, err
	}

	return summary, nil
}

func (r *Runner) deliver(ctx context.Context, alerts []model.Alert) (bool, error) {
	if r.sender == nil {
		return false, nil
	}
	if len(alerts) == 0 {
		r.log.Debug("no alerts to deliver")
		return false, nil
	}

	report := model.NewAlertReport(r.runID, r.source.Name(), alerts)
	if err := r.sender.Send(ctx, report); err != nil {
		r.log.Error("failed to deliver alerts",
			slog.String("report_id", report.ID),
			sl.Err(err),
		)
		return false, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	r.log.Info("alerts delivered",
		slog.String("report_id", report.ID),
		slog.Int("count", len(alerts)),
	)
	return true, nil
}

func (r *Runner) recordMetrics(res engine.Result, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}

	r.metrics.ObserveRun(res.Readings, res.Violations, res.Groups, res.Alerts, elapsed)

	if path := r.cfg.Metrics.TextfilePath; path != "" {
		if err := r.metrics.WriteTextfile(path); err != nil {
			r.log.Error("failed to write metrics", slog.String("path", path), sl.Err(err))
		}
	}
}
