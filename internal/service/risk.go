package service

import (
	"forex-signals/internal/dto"
	"forex-signals/pkg/utils"
)

// RiskSizer maps a playback step against an account balance using the stake
// escalation table (percent of balance per step). Pure, no state.
type RiskSizer struct {
	table []float64
}

func NewRiskSizer(table []float64) *RiskSizer {
	return &RiskSizer{table: table}
}

// MaxStep is the last valid playback step.
func (r *RiskSizer) MaxStep() int {
	return len(r.table) - 1
}

// Quote computes the stake for the given step. Steps outside the table are
// clamped so a corrupt persisted step can never produce an oversized stake.
func (r *RiskSizer) Quote(balance float64, step int) dto.StakeQuote {
	if step < 0 {
		step = 0
	}
	if step > r.MaxStep() {
		step = r.MaxStep()
	}

	riskPercent := r.table[step]
	return dto.StakeQuote{
		StakeAmount:  utils.Round2(balance * riskPercent / 100),
		RiskPercent:  riskPercent,
		PlaybackStep: step,
	}
}
