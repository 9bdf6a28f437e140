package config

const (
	TimestampLegacy  = "legacy"
	TimestampISO8601 = "iso8601"
)

var TimestampFormats = []string{TimestampLegacy, TimestampISO8601}

type InputConfig struct {
	// legacy is "20060102 15:04:05.000" in UTC.
	TimestampFormat string `yaml:"timestamp_format" env:"INPUT_TIMESTAMP_FORMAT" env-default:"legacy"`
}
