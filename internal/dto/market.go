package dto

import "time"

// PriceBar is one OHLC bar. Immutable once received.
type PriceBar struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceSeries is ordered oldest first. The final bar is still forming and is
// never used for indicator evaluation.
type PriceSeries []PriceBar

// LastClosed returns the last closed bar, the one before the forming bar.
// ok is false when the series is too short to have one.
func (s PriceSeries) LastClosed() (closed PriceBar, ok bool) {
	if len(s) < 2 {
		return PriceBar{}, false
	}
	return s[len(s)-2], true
}

// Closes extracts the close prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// TwelveDataTimeSeries mirrors the provider's /time_series payload. Values
// arrive newest first with decimal-string fields.
type TwelveDataTimeSeries struct {
	Values []TwelveDataBar `json:"values"`
	Status string          `json:"status"`
}

type TwelveDataBar struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
}

// GetPriceSeriesParam is the market-data request: symbol, bar interval and
// how many bars to retrieve.
type GetPriceSeriesParam struct {
	Symbol     string
	Interval   string
	OutputSize int
}
