package indicator

import (
	"errors"

	"forex-signals/internal/dto"
)

// ErrInsufficientData is returned when the price series is shorter than the
// engine's minimum bar count.
var ErrInsufficientData = errors.New("insufficient price data for indicator evaluation")

// Snapshot holds the indicator values as of one closed bar. Derived, never
// persisted.
type Snapshot struct {
	EMAFast float64
	EMASlow float64
	RSI     float64
}

// Engine computes smoothed moving averages and a relative-strength oscillator
// from an ordered price series. Evaluation is always anchored at the
// second-to-last bar: the final bar is still forming and its close is not
// final.
type Engine struct {
	fastSpan  int
	slowSpan  int
	rsiWindow int
}

func NewEngine(fastSpan, slowSpan, rsiWindow int) *Engine {
	return &Engine{
		fastSpan:  fastSpan,
		slowSpan:  slowSpan,
		rsiWindow: rsiWindow,
	}
}

// MinBars is the shortest series the engine accepts: the widest lookback plus
// the forming bar and one closed bar.
func (e *Engine) MinBars() int {
	min := e.fastSpan
	if e.slowSpan > min {
		min = e.slowSpan
	}
	if e.rsiWindow > min {
		min = e.rsiWindow
	}
	return min + 2
}

// Evaluate computes the snapshot at the last closed bar of the series.
func (e *Engine) Evaluate(series dto.PriceSeries) (Snapshot, error) {
	if len(series) < e.MinBars() {
		return Snapshot{}, ErrInsufficientData
	}

	closes := series.Closes()
	closedIdx := len(closes) - 2

	fast := emaSeries(closes, e.fastSpan)
	slow := emaSeries(closes, e.slowSpan)

	return Snapshot{
		EMAFast: fast[closedIdx],
		EMASlow: slow[closedIdx],
		RSI:     rsiAt(closes, e.rsiWindow, closedIdx),
	}, nil
}

// emaSeries computes the exponential moving average with α = 2/(span+1),
// seeded with the first price.
func emaSeries(prices []float64, span int) []float64 {
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out
}

// rsiAt computes the relative-strength oscillator at index idx over a
// trailing window of per-bar gains and losses, averaged with a simple mean.
// Zero average loss pins the oscillator at 100.
func rsiAt(closes []float64, window, idx int) float64 {
	var gainSum, lossSum float64
	for i := idx - window + 1; i <= idx; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}

	avgGain := gainSum / float64(window)
	avgLoss := lossSum / float64(window)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
