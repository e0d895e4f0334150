package repository

import (
	"forex-signals/config"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo           UserRepository
	SubscriptionRepo   SubscriptionRepository
	ActivationCodeRepo ActivationCodeRepository
	UserStatsRepo      UserStatsRepository
	SignalRepo         SignalRepository
	MarketDataRepo     MarketDataRepository
	AIRepo             AIRepository
	UnitOfWork         UnitOfWork
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	var aiRepo AIRepository
	if cfg.Gemini.Enabled {
		var err error
		aiRepo, err = NewGeminiAIRepository(cfg, log)
		if err != nil {
			return nil, err
		}
	}

	return &Repository{
		UserRepo:           NewUserRepository(db),
		SubscriptionRepo:   NewSubscriptionRepository(db),
		ActivationCodeRepo: NewActivationCodeRepository(db),
		UserStatsRepo:      NewUserStatsRepository(db),
		SignalRepo:         NewSignalRepository(db),
		MarketDataRepo:     NewTwelveDataRepository(cfg, inmemoryCache, log),
		AIRepo:             aiRepo,
		UnitOfWork:         NewUnitOfWork(db),
	}, nil
}
