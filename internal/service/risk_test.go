package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskSizer_Quote(t *testing.T) {
	sizer := NewRiskSizer([]float64{2, 3, 5})

	tests := []struct {
		name        string
		balance     float64
		step        int
		wantStake   float64
		wantPercent float64
		wantStep    int
	}{
		{"base step", 100, 0, 2, 2, 0},
		{"second step", 100, 1, 3, 3, 1},
		{"final step", 100, 2, 5, 5, 2},
		{"step clamped above", 100, 7, 5, 5, 2},
		{"step clamped below", 100, -1, 2, 2, 0},
		{"rounds to cents", 123.45, 1, 3.70, 3, 1},
		{"zero balance", 0, 2, 0, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sizer.Quote(tt.balance, tt.step)
			assert.Equal(t, tt.wantStake, q.StakeAmount)
			assert.Equal(t, tt.wantPercent, q.RiskPercent)
			assert.Equal(t, tt.wantStep, q.PlaybackStep)
		})
	}
}

func TestRiskSizer_MaxStep(t *testing.T) {
	assert.Equal(t, 2, NewRiskSizer([]float64{2, 3, 5}).MaxStep())
}
