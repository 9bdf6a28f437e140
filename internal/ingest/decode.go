package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/speedwagon-io/satalert/internal/model"
)

const maxLineSize = 1 << 20

type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Decode reads one record per non-blank line. The first bad line aborts the
// batch.
func Decode(r io.Reader, timestampFormat string) ([]model.TelemetryReading, error) {
	return decode(context.Background(), r, timestampFormat)
}

func decode(ctx context.Context, r io.Reader, timestampFormat string) ([]model.TelemetryReading, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var readings []model.TelemetryReading
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		reading, err := ParseLine(line, timestampFormat)
		if err != nil {
			return nil, &LineError{Line: lineNo, Err: err}
		}
		readings = append(readings, reading)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return readings, nil
}
