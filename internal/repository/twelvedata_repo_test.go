package repository

import (
	"testing"
	"time"

	"forex-signals/config"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The request limiter divides a minute by the configured per-minute rate; a
// zero-value config must not take the constructor down.
func TestNewTwelveDataRepository_ZeroRateConfig(t *testing.T) {
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	var repo MarketDataRepository
	assert.NotPanics(t, func() {
		repo = NewTwelveDataRepository(&config.Config{}, cache.NewCache(time.Minute, time.Minute), log)
	})
	assert.NotNil(t, repo)
}
