package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/webbmaffian/go-fifo/channel"
)

// Config holds the fifoproc configuration.
type Config struct {
	Channel ChannelConfig
	Logging LogConfig
	Metrics MetricsConfig
}

// ChannelConfig holds the limits of each channel.
type ChannelConfig struct {
	Capacity  int    `envconfig:"FIFO_CAPACITY" default:"64"`
	MaxRecord int    `envconfig:"FIFO_MAX_RECORD" default:"128"`
	Storage   string `envconfig:"FIFO_STORAGE" default:"heap"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"FIFO_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"FIFO_LOG_DEV" default:"false"`
}

// MetricsConfig holds the Prometheus endpoint configuration. An empty
// address disables the endpoint.
type MetricsConfig struct {
	Addr string `envconfig:"FIFO_METRICS_ADDR" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Channel: ChannelConfig{
			Capacity:  64,
			MaxRecord: 128,
			Storage:   "heap",
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the channel limits.
func (c *Config) Validate() error {
	if c.Channel.Capacity < 1 {
		return errors.New("capacity must be positive")
	}

	if c.Channel.MaxRecord < 1 {
		return errors.New("max record size must be positive")
	}

	if _, err := channel.ParseStorage(c.Channel.Storage); err != nil {
		return err
	}

	return nil
}

// ChannelOptions translates the configuration into channel options.
func (c *Config) ChannelOptions() ([]channel.Option, error) {
	storage, err := channel.ParseStorage(c.Channel.Storage)

	if err != nil {
		return nil, err
	}

	return []channel.Option{channel.WithStorage(storage)}, nil
}
