package repository

import (
	"context"
	"time"

	"forex-signals/internal/model"
	"forex-signals/pkg/utils"

	"gorm.io/gorm"
)

type ActivationCodeRepository interface {
	Create(ctx context.Context, code *model.ActivationCode, opts ...utils.DBOption) error
	GetByCode(ctx context.Context, code string, opts ...utils.DBOption) (*model.ActivationCode, error)
	// MarkUsed flips used false→true for the given code. The conditional
	// update makes concurrent consumption of the same code a single-winner
	// race; consumed is false when another caller got there first.
	MarkUsed(ctx context.Context, code string, telegramID int64, opts ...utils.DBOption) (consumed bool, err error)
}

type activationCodeRepository struct {
	db *gorm.DB
}

func NewActivationCodeRepository(db *gorm.DB) ActivationCodeRepository {
	return &activationCodeRepository{db: db}
}

func (r *activationCodeRepository) Create(ctx context.Context, code *model.ActivationCode, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(code).Error
}

func (r *activationCodeRepository) GetByCode(ctx context.Context, code string, opts ...utils.DBOption) (*model.ActivationCode, error) {
	var record model.ActivationCode
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("code = ?", code).First(&record)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &record, nil
}

func (r *activationCodeRepository) MarkUsed(ctx context.Context, code string, telegramID int64, opts ...utils.DBOption) (bool, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	now := time.Now()
	result := tx.Model(&model.ActivationCode{}).
		Where("code = ? AND used = ?", code, false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_by": telegramID,
			"used_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
