package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/speedwagon-io/satalert/internal/model"
)

type Source interface {
	Readings(ctx context.Context) ([]model.TelemetryReading, error)
	Name() string
	Close() error
}

// StdinPath selects standard input instead of a file.
const StdinPath = "-"

type FileSource struct {
	log             *slog.Logger
	path            string
	timestampFormat string
	stdin           io.Reader
}

func NewFileSource(log *slog.Logger, path, timestampFormat string) *FileSource {
	return &FileSource{
		log:             log.With(slog.String("component", "ingest")),
		path:            path,
		timestampFormat: timestampFormat,
		stdin:           os.Stdin,
	}
}

func (s *FileSource) Name() string {
	if s.path == StdinPath {
		return "stdin"
	}
	return s.path
}

func (s *FileSource) Close() error {
	return nil
}

func (s *FileSource) Readings(ctx context.Context) ([]model.TelemetryReading, error) {
	var r io.Reader
	if s.path == StdinPath {
		r = s.stdin
	} else {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	readings, err := decode(ctx, r, s.timestampFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Name(), err)
	}

	s.log.Debug("input decoded",
		slog.String("source", s.Name()),
		slog.Int("readings", len(readings)),
	)

	return readings, nil
}
