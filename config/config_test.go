package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load tolerates a missing config.yaml, so every value that feeds a divisor
// or a limiter must come back non-zero.
func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.MarketData.MaxRequestPerMin)
	assert.Equal(t, 10, cfg.Gemini.MaxRequestPerMinute)
	assert.Equal(t, 100000, cfg.Gemini.MaxTokenPerMinute)

	assert.Equal(t, "permissive", cfg.Signal.Mode)
	assert.Equal(t, 20, cfg.Signal.FastSpan)
	assert.Equal(t, 50, cfg.Signal.SlowSpan)
	assert.Equal(t, 14, cfg.Signal.RSIWindow)
	assert.Equal(t, []float64{2, 3, 5}, cfg.Risk.Table)
	assert.Equal(t, 100.0, cfg.Risk.DefaultBalance)
}
