package service

import (
	"forex-signals/config"
	"forex-signals/internal/indicator"
	"forex-signals/internal/repository"
	"forex-signals/internal/strategy"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/telegram"
)

type Service struct {
	AccessService    AccessService
	OutcomeService   OutcomeService
	SignalService    SignalService
	SchedulerService SchedulerService
	DashboardService DashboardService
	RiskSizer        *RiskSizer
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	sender *telegram.RateLimitedSender,
) *Service {
	engine := indicator.NewEngine(cfg.Signal.FastSpan, cfg.Signal.SlowSpan, cfg.Signal.RSIWindow)
	policy := strategy.NewDecisionPolicy(&cfg.Signal)
	sizer := NewRiskSizer(cfg.Risk.Table)

	accessService := NewAccessService(cfg, log, repo.UserRepo, repo.SubscriptionRepo, repo.ActivationCodeRepo, repo.UnitOfWork)
	outcomeService := NewOutcomeService(cfg, log, repo.UserStatsRepo, inmemoryCache, sizer)
	signalService := NewSignalService(cfg, log, engine, policy, sizer, accessService, outcomeService, repo.MarketDataRepo, repo.SignalRepo, repo.AIRepo)
	schedulerService := NewSchedulerService(cfg, log, repo.SubscriptionRepo, repo.SignalRepo, sender)
	dashboardService := NewDashboardService(repo.UserRepo, repo.UserStatsRepo, repo.SignalRepo)

	return &Service{
		AccessService:    accessService,
		OutcomeService:   outcomeService,
		SignalService:    signalService,
		SchedulerService: schedulerService,
		DashboardService: dashboardService,
		RiskSizer:        sizer,
	}
}
