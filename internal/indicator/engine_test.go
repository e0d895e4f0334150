package indicator

import (
	"testing"
	"time"

	"forex-signals/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesFromCloses(closes []float64) dto.PriceSeries {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	series := make(dto.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = dto.PriceBar{
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute),
		}
	}
	return series
}

func constantCloses(v float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func TestEngine_MinBars(t *testing.T) {
	tests := []struct {
		name                      string
		fast, slow, rsi, expected int
	}{
		{name: "slow span dominates", fast: 20, slow: 50, rsi: 14, expected: 52},
		{name: "rsi window dominates", fast: 5, slow: 10, rsi: 30, expected: 32},
		{name: "fast span dominates", fast: 60, slow: 50, rsi: 14, expected: 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.fast, tt.slow, tt.rsi)
			assert.Equal(t, tt.expected, e.MinBars())
		})
	}
}

func TestEngine_Evaluate_InsufficientData(t *testing.T) {
	e := NewEngine(20, 50, 14)

	for _, n := range []int{0, 1, 14, 51} {
		_, err := e.Evaluate(seriesFromCloses(constantCloses(1.1, n)))
		assert.ErrorIs(t, err, ErrInsufficientData, "series of %d bars must be rejected", n)
	}

	_, err := e.Evaluate(seriesFromCloses(constantCloses(1.1, 52)))
	assert.NoError(t, err)
}

func TestEngine_Evaluate_ConstantSeriesEMAConverges(t *testing.T) {
	e := NewEngine(20, 50, 14)

	snap, err := e.Evaluate(seriesFromCloses(constantCloses(1.2345, 120)))
	require.NoError(t, err)

	// EMA seeded with the series value never leaves it.
	assert.Equal(t, 1.2345, snap.EMAFast)
	assert.Equal(t, 1.2345, snap.EMASlow)
}

func TestEngine_Evaluate_RSIExtremes(t *testing.T) {
	e := NewEngine(20, 50, 14)

	rising := make([]float64, 120)
	falling := make([]float64, 120)
	for i := range rising {
		rising[i] = 1.1 + float64(i)*0.0002
		falling[i] = 1.3 - float64(i)*0.0002
	}

	snap, err := e.Evaluate(seriesFromCloses(rising))
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.RSI, "strictly rising series has no losses")

	snap, err = e.Evaluate(seriesFromCloses(falling))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, snap.RSI, 1e-9, "strictly falling series has no gains")
}

func TestEngine_Evaluate_IgnoresFormingBar(t *testing.T) {
	e := NewEngine(20, 50, 14)

	closes := constantCloses(1.5, 60)
	series := seriesFromCloses(closes)
	// Mutating the still-forming bar must not move the snapshot.
	series[len(series)-1].Close = 9.9

	snap, err := e.Evaluate(series)
	require.NoError(t, err)
	assert.Equal(t, 1.5, snap.EMAFast)
	assert.Equal(t, 100.0, snap.RSI)
}

func TestEngine_Evaluate_TrendDirection(t *testing.T) {
	e := NewEngine(20, 50, 14)

	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 1.1 + float64(i)*0.0002
	}

	snap, err := e.Evaluate(seriesFromCloses(rising))
	require.NoError(t, err)
	assert.Greater(t, snap.EMAFast, snap.EMASlow, "fast average leads in an uptrend")
}
