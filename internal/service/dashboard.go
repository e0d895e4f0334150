package service

import (
	"context"
	"fmt"

	"forex-signals/internal/dto"
	"forex-signals/internal/model"
	"forex-signals/internal/repository"
	"forex-signals/pkg/utils"
)

type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardSummary, error)
	// LatestSignal returns nil when no signal has been issued yet.
	LatestSignal(ctx context.Context) (*model.Signal, error)
}

type dashboardService struct {
	userRepo   repository.UserRepository
	statsRepo  repository.UserStatsRepository
	signalRepo repository.SignalRepository
}

func NewDashboardService(
	userRepo repository.UserRepository,
	statsRepo repository.UserStatsRepository,
	signalRepo repository.SignalRepository,
) DashboardService {
	return &dashboardService{
		userRepo:   userRepo,
		statsRepo:  statsRepo,
		signalRepo: signalRepo,
	}
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	trades, wins, losses, err := s.statsRepo.AggregateTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	var winRate float64
	if trades > 0 {
		winRate = utils.Round2(float64(wins) / float64(trades) * 100)
	}

	return &dto.DashboardSummary{
		Users:   users,
		Trades:  trades,
		Wins:    wins,
		Losses:  losses,
		WinRate: winRate,
	}, nil
}

func (s *dashboardService) LatestSignal(ctx context.Context) (*model.Signal, error) {
	return s.signalRepo.Latest(ctx)
}
