package model

import "time"

// Subscription grants access until ExpiresAt. Absence of a row means no
// access; expired rows are treated as absent, never cached.
type Subscription struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
