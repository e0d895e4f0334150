package repository

import (
	"context"
	"time"

	"forex-signals/internal/model"
	"forex-signals/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64, opts ...utils.DBOption) (*model.Subscription, error)
	Upsert(ctx context.Context, sub *model.Subscription, opts ...utils.DBOption) error
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]model.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByTelegramID(ctx context.Context, telegramID int64, opts ...utils.DBOption) (*model.Subscription, error) {
	var sub model.Subscription
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("telegram_id = ?", telegramID).First(&sub)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &sub, nil
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(sub).Error
}

func (r *subscriptionRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("expires_at > ? AND expires_at <= ?", from, to).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
