package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()
	assert.Equal(t, ModeFile, c.Mode)
	assert.Equal(t, 30, c.RollingWindow)
	assert.Equal(t, 600, c.HistorySize)
	assert.Equal(t, 200, c.BarWindow)
	assert.Equal(t, 5, c.TopN)
	assert.Equal(t, 10.0, c.PlotFPS)
	assert.Equal(t, time.Duration(0), c.IdleFallback)
	assert.Equal(t, "sentiment", c.ValueField)
	assert.Contains(t, c.Categories, "other")
	require.NoError(t, c.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROJECT_INGEST_MODE", "kafka")
	t.Setenv("KAFKA_BROKER_ADDRESS", "k1:9092, k2:9092")
	t.Setenv("PROJECT_ROLLING_WINDOW_SIZE", "5")
	t.Setenv("PROJECT_IDLE_FALLBACK_SECONDS", "2.5")
	t.Setenv("PROJECT_VERBOSE", "0")

	c := Load()
	assert.Equal(t, ModeKafka, c.Mode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Brokers)
	assert.Equal(t, 5, c.RollingWindow)
	assert.Equal(t, 2500*time.Millisecond, c.IdleFallback)
	assert.False(t, c.Verbose)
	require.NoError(t, c.Validate())
}

func TestValidateRejections(t *testing.T) {
	base := Load()
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "stdin" }},
		{"kafka without brokers", func(c *Config) { c.Mode = ModeKafka; c.Brokers = nil }},
		{"kafka without topic", func(c *Config) { c.Mode = ModeKafka; c.Topic = "" }},
		{"file without path", func(c *Config) { c.DataFile = "" }},
		{"zero rolling window", func(c *Config) { c.RollingWindow = 0 }},
		{"zero history", func(c *Config) { c.HistorySize = 0 }},
		{"zero bar window", func(c *Config) { c.BarWindow = 0 }},
		{"zero top-n", func(c *Config) { c.TopN = 0 }},
		{"zero fps", func(c *Config) { c.PlotFPS = 0 }},
		{"negative stall threshold", func(c *Config) { c.StallThreshold = -1 }},
		{"negative idle fallback", func(c *Config) { c.IdleFallback = -time.Second }},
		{"inverted value range", func(c *Config) { c.ValueMin = 1; c.ValueMax = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
