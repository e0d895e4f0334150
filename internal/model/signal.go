package model

import "time"

// Signal is the persisted log of every issued signal. The dashboard's
// latest-signal endpoint and the retention cleanup job read this table.
type Signal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TelegramID  int64     `gorm:"not null;index" json:"telegram_id"`
	Symbol      string    `gorm:"not null" json:"symbol"`
	Direction   string    `gorm:"not null" json:"direction"`
	Confidence  int       `gorm:"not null" json:"confidence"`
	RiskPercent float64   `gorm:"not null" json:"risk_percent"`
	StakeAmount float64   `gorm:"not null" json:"stake_amount"`
	IssuedAt    time.Time `gorm:"not null;index" json:"issued_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Signal) TableName() string {
	return "signals"
}
