package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/speedwagon-io/satalert/internal/config"
	"github.com/speedwagon-io/satalert/internal/engine"
	"github.com/speedwagon-io/satalert/internal/ingest"
	"github.com/speedwagon-io/satalert/internal/lib/logger/sl"
	"github.com/speedwagon-io/satalert/internal/metrics"
	"github.com/speedwagon-io/satalert/internal/pipeline"
	"github.com/speedwagon-io/satalert/internal/sender"
)

const (
	exitFailure  = 1
	exitDelivery = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("satalert", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	format := fs.String("format", "", "output format: json, yaml or xlsx")
	outPath := fs.String("out", "", "write alerts to this file instead of stdout")
	dryRun := fs.Bool("dry-run", false, "log alert reports instead of delivering them")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: satalert [flags] <inputFilePath>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return exitFailure
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitFailure
	}
	inputPath := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	log.Info("starting satalert",
		slog.String("env", cfg.Env),
		slog.String("input", inputPath),
		slog.Bool("dry_run", *dryRun),
	)

	source := ingest.NewFileSource(log, inputPath, cfg.Input.TimestampFormat)
	defer source.Close()

	detector := engine.New(log, engine.Options{
		Window:    cfg.Engine.Window.Duration(),
		Threshold: cfg.Engine.Threshold,
		Workers:   cfg.Engine.Workers,
	})

	alertSender := buildSender(log, cfg, *dryRun)
	if alertSender != nil {
		defer func() {
			if err := alertSender.Close(); err != nil {
				log.Error("failed to close sender", sl.Err(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Info("received signal, shutting down", slog.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	runner := pipeline.NewRunner(log, cfg, source, detector, alertSender, metrics.New())

	// Alerts are buffered so a failed run never touches an existing -out file.
	var out bytes.Buffer
	summary, err := runner.Run(ctx, &out)
	if err != nil && !errors.Is(err, pipeline.ErrDelivery) {
		log.Error("run failed", sl.Err(err))
		return exitFailure
	}

	if werr := writeOutput(cfg.Output.Path, out.Bytes()); werr != nil {
		log.Error("failed to write output", slog.String("path", cfg.Output.Path), sl.Err(werr))
		return exitFailure
	}

	if err != nil {
		log.Error("run failed", sl.Err(err))
		return exitDelivery
	}

	log.Info("satalert finished",
		slog.Int("alerts", len(summary.Alerts)),
		slog.Bool("delivered", summary.Delivered),
	)
	return 0
}

// writeOutput writes data to stdout when path is empty. Otherwise it writes
// a temp file next to path and renames it into place.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".satalert-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// buildSender returns nil when no sink is configured.
func buildSender(log *slog.Logger, cfg *config.Config, dryRun bool) sender.Sender {
	if dryRun {
		log.Info("dry-run mode: alert reports will be logged instead of sent")
		return sender.NewLogSender(log)
	}

	var sinks []sender.Sender
	if cfg.Sender.URL != "" {
		sinks = append(sinks, sender.NewHTTPSender(log, &cfg.Sender))
		log.Info("webhook delivery enabled", slog.String("url", cfg.Sender.URL))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sinks = append(sinks, sender.NewKafkaSender(log, cfg.Kafka))
		log.Info("kafka delivery enabled", slog.String("topic", cfg.Kafka.Topic))
	}

	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return sender.NewMultiSender(sinks...)
	}
}
