package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// MarketRecord is the per-symbol win/loss breakdown stored in the PerMarket
// JSON column.
type MarketRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// UserStats is the per-user trading ledger: lifetime counters, signed streak,
// the daily bucket, and the playback step driving stake escalation. One row
// per user, created lazily on first interaction.
type UserStats struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TelegramID    int64          `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Balance       float64        `gorm:"not null" json:"balance"`
	Wins          int            `gorm:"not null;default:0" json:"wins"`
	Losses        int            `gorm:"not null;default:0" json:"losses"`
	Trades        int            `gorm:"not null;default:0" json:"trades"`
	CurrentStreak int            `gorm:"not null;default:0" json:"current_streak"`
	BestStreak    int            `gorm:"not null;default:0" json:"best_streak"`
	WorstStreak   int            `gorm:"not null;default:0" json:"worst_streak"`
	PerMarket     datatypes.JSON `json:"per_market"`
	DailyDate     string         `json:"daily_date"`
	DailyWins     int            `gorm:"not null;default:0" json:"daily_wins"`
	DailyLosses   int            `gorm:"not null;default:0" json:"daily_losses"`
	DailyStreak   int            `gorm:"not null;default:0" json:"daily_streak"`
	PlaybackStep  int            `gorm:"not null;default:0" json:"playback_step"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// WinRate returns wins/trades as a percentage, 0 when no trades yet.
func (s *UserStats) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades) * 100
}

// MarketBreakdown decodes the PerMarket JSON column. A nil or empty column
// yields an empty map.
func (s *UserStats) MarketBreakdown() (map[string]MarketRecord, error) {
	breakdown := make(map[string]MarketRecord)
	if len(s.PerMarket) == 0 {
		return breakdown, nil
	}
	if err := json.Unmarshal(s.PerMarket, &breakdown); err != nil {
		return nil, err
	}
	return breakdown, nil
}

// SetMarketBreakdown encodes the breakdown back into the PerMarket column.
func (s *UserStats) SetMarketBreakdown(breakdown map[string]MarketRecord) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return err
	}
	s.PerMarket = datatypes.JSON(raw)
	return nil
}
