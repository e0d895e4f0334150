package dto

import "time"

// Signal is the decision engine's output for one market, enriched with the
// stake quote before it reaches the subscriber.
type Signal struct {
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Confidence int       `json:"confidence"`
	IssuedAt   time.Time `json:"issued_at"`

	// Presentation contract: enter at the open of the next bar, position
	// expires after ExpiryMinutes.
	EntryTiming   string `json:"entry_timing"`
	ExpiryMinutes int    `json:"expiry_minutes"`

	StakeAmount  float64 `json:"stake_amount"`
	RiskPercent  float64 `json:"risk_percent"`
	PlaybackStep int     `json:"playback_step"`

	// Commentary is an optional AI-generated rationale; empty when the
	// feature is disabled or the model call failed.
	Commentary string `json:"commentary,omitempty"`
}

// PendingTrade is the single outstanding signal a user must resolve before a
// new one may be issued. Ephemeral, cleared on outcome report.
type PendingTrade struct {
	Symbol    string    `json:"symbol"`
	Direction string    `json:"direction"`
	IssuedAt  time.Time `json:"issued_at"`
}

// StakeQuote maps a playback step against an account balance.
type StakeQuote struct {
	StakeAmount  float64 `json:"stake_amount"`
	RiskPercent  float64 `json:"risk_percent"`
	PlaybackStep int     `json:"playback_step"`
}
