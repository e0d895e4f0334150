package repository

import (
	"context"
	"time"

	"forex-signals/internal/model"
	"forex-signals/pkg/utils"

	"gorm.io/gorm"
)

type SignalRepository interface {
	Create(ctx context.Context, signal *model.Signal, opts ...utils.DBOption) error
	Latest(ctx context.Context) (*model.Signal, error)
	DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type signalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) Create(ctx context.Context, signal *model.Signal, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(signal).Error
}

func (r *signalRepository) Latest(ctx context.Context) (*model.Signal, error) {
	var signal model.Signal
	result := r.db.WithContext(ctx).Order("issued_at DESC").First(&signal)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &signal, nil
}

func (r *signalRepository) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("issued_at < ?", cutoff).
		Delete(&model.Signal{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
