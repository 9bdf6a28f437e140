package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"prod"`
	Engine  EngineConfig  `yaml:"engine"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Sender  SenderConfig  `yaml:"sender"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type EngineConfig struct {
	Window    Window `yaml:"window" env:"ENGINE_WINDOW" env-default:"5m"`
	Threshold int    `yaml:"threshold" env:"ENGINE_THRESHOLD" env-default:"3"`
	Workers   int    `yaml:"workers" env:"ENGINE_WORKERS" env-default:"1"`
}

type OutputConfig struct {
	Format string `yaml:"format" env:"OUTPUT_FORMAT" env-default:"json"`
	// Path empty means stdout.
	Path string `yaml:"path" env:"OUTPUT_PATH"`
}

// SenderConfig points at an optional alert webhook. An empty URL disables it.
type SenderConfig struct {
	URL     string        `yaml:"url" env:"SENDER_URL"`
	Token   string        `yaml:"token" env:"SENDER_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" env-default:"5"`
	InitialDelay time.Duration `yaml:"initial_delay" env-default:"1s"`
	MaxDelay     time.Duration `yaml:"max_delay" env-default:"60s"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"satellite.alerts"`
}

type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"METRICS_TEXTFILE_PATH"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

var (
	OutputFormats   = []string{"json", "yaml", "xlsx"}
	ErrInvalidValue = errors.New("invalid config value")
)

// Load reads the YAML file at configPath, falling back to CONFIG_PATH. With
// neither set only the environment and defaults are used.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Engine.Window.Duration() <= 0 {
		return fmt.Errorf("%w: engine.window must be positive", ErrInvalidValue)
	}
	if c.Engine.Threshold < 1 {
		return fmt.Errorf("%w: engine.threshold must be at least 1", ErrInvalidValue)
	}
	if !contains(TimestampFormats, c.Input.TimestampFormat) {
		return fmt.Errorf("%w: input.timestamp_format %q", ErrInvalidValue, c.Input.TimestampFormat)
	}
	if !contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q", ErrInvalidValue, c.Output.Format)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("%w: kafka.topic is required with brokers", ErrInvalidValue)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
