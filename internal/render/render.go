package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/speedwagon-io/satalert/internal/model"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Render writes alerts in the given format. An empty batch still produces a
// valid document.
func Render(w io.Writer, format string, alerts []model.Alert) error {
	if alerts == nil {
		alerts = []model.Alert{}
	}

	switch format {
	case "", FormatJSON:
		return renderJSON(w, alerts)
	case FormatYAML:
		return renderYAML(w, alerts)
	case FormatXLSX:
		return renderXLSX(w, alerts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderJSON(w io.Writer, alerts []model.Alert) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(alerts); err != nil {
		return fmt.Errorf("failed to encode alerts: %w", err)
	}
	return nil
}

func renderYAML(w io.Writer, alerts []model.Alert) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(alerts); err != nil {
		return fmt.Errorf("failed to encode alerts: %w", err)
	}
	return enc.Close()
}
