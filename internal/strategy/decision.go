package strategy

import (
	"math"
	"time"

	"forex-signals/config"
	"forex-signals/internal/dto"
	"forex-signals/internal/indicator"
)

const (
	ModeStrict     = "strict"
	ModePermissive = "permissive"
)

// DecisionPolicy is the pure rule engine turning an indicator snapshot into a
// directional call. It never persists state; registering the result with the
// outcome tracker is the caller's job.
type DecisionPolicy struct {
	cfg *config.SignalConfig
}

func NewDecisionPolicy(cfg *config.SignalConfig) *DecisionPolicy {
	return &DecisionPolicy{cfg: cfg}
}

// Decide evaluates the rule tiers top to bottom, first match wins:
//
//  1. uptrend + pullback to the fast average + bullish closed bar + neutral
//     RSI → Buy at full confidence
//  2. the symmetric Sell case
//  3. uptrend + bullish bar (permissive mode only) → Buy, trend bonus only
//  4. the symmetric Sell case
//
// ok is false when no active tier matches; that is a valid no-trade outcome,
// not an error.
func (p *DecisionPolicy) Decide(symbol string, snap indicator.Snapshot, closed dto.PriceBar, now time.Time) (*dto.Signal, bool) {
	trendUp := snap.EMAFast > snap.EMASlow
	trendDown := snap.EMAFast < snap.EMASlow
	momentumBull := closed.Close > closed.Open
	momentumBear := closed.Close < closed.Open
	pullback := math.Abs(closed.Close-snap.EMAFast)/closed.Close < p.cfg.PullbackThreshold

	buyBand := snap.RSI >= p.cfg.BuyRSILow && snap.RSI <= p.cfg.BuyRSIHigh
	sellBand := snap.RSI >= p.cfg.SellRSILow && snap.RSI <= p.cfg.SellRSIHigh

	fullConfidence := func(band bool) int {
		confidence := p.cfg.BaseConfidence
		confidence += p.cfg.TrendBonus
		if band {
			confidence += p.cfg.RSIBonus
		}
		return confidence
	}

	switch {
	case trendUp && pullback && momentumBull && buyBand:
		return p.signal(symbol, dto.DirectionBuy, fullConfidence(true), now), true
	case trendDown && pullback && momentumBear && sellBand:
		return p.signal(symbol, dto.DirectionSell, fullConfidence(true), now), true
	}

	if p.cfg.Mode != ModePermissive {
		return nil, false
	}

	switch {
	case trendUp && momentumBull:
		return p.signal(symbol, dto.DirectionBuy, p.cfg.BaseConfidence+p.cfg.TrendBonus, now), true
	case trendDown && momentumBear:
		return p.signal(symbol, dto.DirectionSell, p.cfg.BaseConfidence+p.cfg.TrendBonus, now), true
	}

	return nil, false
}

func (p *DecisionPolicy) signal(symbol, direction string, confidence int, now time.Time) *dto.Signal {
	return &dto.Signal{
		Symbol:        symbol,
		Direction:     direction,
		Confidence:    confidence,
		IssuedAt:      now,
		EntryTiming:   "next bar open",
		ExpiryMinutes: p.cfg.ExpiryMinutes,
	}
}
