package repository

import (
	"context"

	"forex-signals/internal/model"
	"forex-signals/pkg/utils"

	"gorm.io/gorm"
)

type UserStatsRepository interface {
	Get(ctx context.Context, telegramID int64, opts ...utils.DBOption) (*model.UserStats, error)
	Save(ctx context.Context, stats *model.UserStats, opts ...utils.DBOption) error
	AggregateTotals(ctx context.Context) (trades, wins, losses int64, err error)
}

type userStatsRepository struct {
	db *gorm.DB
}

func NewUserStatsRepository(db *gorm.DB) UserStatsRepository {
	return &userStatsRepository{db: db}
}

func (r *userStatsRepository) Get(ctx context.Context, telegramID int64, opts ...utils.DBOption) (*model.UserStats, error) {
	var stats model.UserStats
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("telegram_id = ?", telegramID).First(&stats)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &stats, nil
}

func (r *userStatsRepository) Save(ctx context.Context, stats *model.UserStats, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Save(stats).Error
}

func (r *userStatsRepository) AggregateTotals(ctx context.Context) (int64, int64, int64, error) {
	var totals struct {
		Trades int64
		Wins   int64
		Losses int64
	}

	err := r.db.WithContext(ctx).Model(&model.UserStats{}).
		Select("COALESCE(SUM(trades), 0) AS trades, COALESCE(SUM(wins), 0) AS wins, COALESCE(SUM(losses), 0) AS losses").
		Scan(&totals).Error
	if err != nil {
		return 0, 0, 0, err
	}

	return totals.Trades, totals.Wins, totals.Losses, nil
}
