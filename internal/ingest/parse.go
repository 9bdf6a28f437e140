package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/speedwagon-io/satalert/internal/config"
	"github.com/speedwagon-io/satalert/internal/model"
)

const (
	fieldSeparator = "|"
	fieldCount     = 8

	LegacyLayout = "20060102 15:04:05.000"
)

var (
	ErrFieldCount      = errors.New("wrong field count")
	ErrTimestamp       = errors.New("invalid timestamp")
	ErrNumber          = errors.New("invalid number")
	ErrTimestampFormat = errors.New("unknown timestamp format")
)

// ParseLine decodes one record:
//
//	timestamp|satelliteId|redHigh|yellowHigh|yellowLow|redLow|raw|component
//
// Every field is trimmed. Any malformed field rejects the whole line: the
// satellite id must fit in 32 bits and measurements must be finite.
// Timestamps are kept to millisecond precision.
func ParseLine(line, timestampFormat string) (model.TelemetryReading, error) {
	parts := splitFields(line)
	if len(parts) != fieldCount {
		return model.TelemetryReading{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(parts), fieldCount)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	ts, err := parseTimestamp(parts[0], timestampFormat)
	if err != nil {
		return model.TelemetryReading{}, err
	}

	satelliteID, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return model.TelemetryReading{}, fmt.Errorf("%w: satellite id %q", ErrNumber, parts[1])
	}

	var limits [5]float64
	names := [5]string{"red high limit", "yellow high limit", "yellow low limit", "red low limit", "raw value"}
	for i := range limits {
		limits[i], err = strconv.ParseFloat(parts[2+i], 64)
		if err != nil || math.IsNaN(limits[i]) || math.IsInf(limits[i], 0) {
			return model.TelemetryReading{}, fmt.Errorf("%w: %s %q", ErrNumber, names[i], parts[2+i])
		}
	}

	return model.TelemetryReading{
		Timestamp:       ts,
		SatelliteID:     int(satelliteID),
		RedHighLimit:    limits[0],
		YellowHighLimit: limits[1],
		YellowLowLimit:  limits[2],
		RedLowLimit:     limits[3],
		RawValue:        limits[4],
		Component:       parts[7],
	}, nil
}

// splitFields drops trailing empty fields, so "a|b|" has two fields.
func splitFields(line string) []string {
	parts := strings.Split(line, fieldSeparator)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func parseTimestamp(s, format string) (time.Time, error) {
	switch format {
	case "", config.TimestampLegacy:
		ts, err := time.Parse(LegacyLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrTimestamp, s)
		}
		return ts.UTC(), nil
	case config.TimestampISO8601:
		ts, err := iso8601.ParseString(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrTimestamp, s)
		}
		return ts.UTC().Truncate(time.Millisecond), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampFormat, format)
	}
}
