package model

import "time"

// ActivationCode is a single-use token exchanged for subscription days.
// Used flips false→true exactly once; consumed codes are kept for audit.
type ActivationCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"not null;uniqueIndex" json:"code"`
	ValidDays int        `gorm:"not null" json:"valid_days"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedBy    *int64     `json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ActivationCode) TableName() string {
	return "activation_codes"
}
