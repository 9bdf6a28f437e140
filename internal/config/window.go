package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sosodev/duration"
	"gopkg.in/yaml.v3"
)

// Window is a duration that accepts Go syntax ("5m") or ISO 8601 ("PT5M").
type Window time.Duration

func (w Window) Duration() time.Duration { return time.Duration(w) }

func (w Window) String() string { return time.Duration(w).String() }

// SetValue implements cleanenv.Setter.
func (w *Window) SetValue(s string) error {
	d, err := ParseWindow(s)
	if err != nil {
		return err
	}
	*w = Window(d)
	return nil
}

func (w *Window) UnmarshalYAML(node *yaml.Node) error {
	return w.SetValue(node.Value)
}

func ParseWindow(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty window")
	}

	if strings.HasPrefix(strings.ToUpper(s), "P") {
		d, err := duration.Parse(strings.ToUpper(s))
		if err != nil {
			return 0, fmt.Errorf("failed to parse ISO 8601 window %q: %w", s, err)
		}
		return d.ToTimeDuration(), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse window %q: %w", s, err)
	}
	return d, nil
}
