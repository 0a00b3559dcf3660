package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FIFO_CAPACITY", "256")
	t.Setenv("FIFO_MAX_RECORD", "32")
	t.Setenv("FIFO_STORAGE", "mmap")
	t.Setenv("FIFO_LOG_LEVEL", "debug")
	t.Setenv("FIFO_METRICS_ADDR", ":9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Channel.Capacity)
	assert.Equal(t, 32, cfg.Channel.MaxRecord)
	assert.Equal(t, "mmap", cfg.Channel.Storage)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)

	opts, err := cfg.ChannelOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Setenv("FIFO_CAPACITY", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.Channel.Capacity = 0 }},
		{"negative record", func(c *Config) { c.Channel.MaxRecord = -1 }},
		{"unknown storage", func(c *Config) { c.Channel.Storage = "tape" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
