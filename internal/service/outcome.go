package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"forex-signals/config"
	"forex-signals/internal/dto"
	"forex-signals/internal/model"
	"forex-signals/internal/repository"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/common"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/utils"
)

// OutcomeResult is what the user sees after reporting: the trade that was
// resolved, the updated ledger, and the stake for the next signal.
type OutcomeResult struct {
	Trade     dto.PendingTrade
	Win       bool
	Stats     model.UserStats
	NextQuote dto.StakeQuote
}

type OutcomeService interface {
	// GetOrCreateStats lazily creates the ledger row on first interaction.
	GetOrCreateStats(ctx context.Context, telegramID int64) (*model.UserStats, error)
	// RegisterSignal records the signal as the user's single pending trade.
	// ErrTradePending when one is already outstanding.
	RegisterSignal(ctx context.Context, telegramID int64, sig *dto.Signal) error
	// ReportOutcome resolves the pending trade and applies the streak, daily
	// bucket, per-market and playback rules atomically.
	ReportOutcome(ctx context.Context, telegramID int64, win bool) (*OutcomeResult, error)
	Stats(ctx context.Context, telegramID int64) (*model.UserStats, error)
	PendingTrade(telegramID int64) (*dto.PendingTrade, bool)
	SetBalance(ctx context.Context, telegramID int64, balance float64) error
}

type outcomeService struct {
	cfg       *config.Config
	logger    *logger.Logger
	statsRepo repository.UserStatsRepository
	cache     cache.Cache
	sizer     *RiskSizer
	locks     *userLocks
}

func NewOutcomeService(
	cfg *config.Config,
	log *logger.Logger,
	statsRepo repository.UserStatsRepository,
	inmemoryCache cache.Cache,
	sizer *RiskSizer,
) OutcomeService {
	return &outcomeService{
		cfg:       cfg,
		logger:    log,
		statsRepo: statsRepo,
		cache:     inmemoryCache,
		sizer:     sizer,
		locks:     newUserLocks(),
	}
}

// userLocks hands out one mutex per telegram user so read-modify-write cycles
// on the same ledger serialize while distinct users stay parallel.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *userLocks) get(telegramID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[telegramID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[telegramID] = lock
	}
	return lock
}

func (s *outcomeService) GetOrCreateStats(ctx context.Context, telegramID int64) (*model.UserStats, error) {
	lock := s.locks.get(telegramID)
	lock.Lock()
	defer lock.Unlock()

	return s.getOrCreateLocked(ctx, telegramID)
}

func (s *outcomeService) getOrCreateLocked(ctx context.Context, telegramID int64) (*model.UserStats, error) {
	stats, err := s.statsRepo.Get(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}
	if stats != nil {
		return stats, nil
	}

	stats = &model.UserStats{
		TelegramID: telegramID,
		Balance:    s.cfg.Risk.DefaultBalance,
		DailyDate:  utils.DateOnly(time.Now()),
	}
	if err := s.statsRepo.Save(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to create user stats: %w", err)
	}
	return stats, nil
}

func (s *outcomeService) RegisterSignal(ctx context.Context, telegramID int64, sig *dto.Signal) error {
	lock := s.locks.get(telegramID)
	lock.Lock()
	defer lock.Unlock()

	key := fmt.Sprintf(common.KeyPendingTrade, telegramID)
	if _, found := s.cache.Get(key); found {
		return ErrTradePending
	}

	s.cache.Set(key, dto.PendingTrade{
		Symbol:    sig.Symbol,
		Direction: sig.Direction,
		IssuedAt:  sig.IssuedAt,
	}, cache.NoExpiration)

	return nil
}

func (s *outcomeService) PendingTrade(telegramID int64) (*dto.PendingTrade, bool) {
	key := fmt.Sprintf(common.KeyPendingTrade, telegramID)
	trade, found := cache.GetTyped[dto.PendingTrade](s.cache, key)
	if !found {
		return nil, false
	}
	return &trade, true
}

func (s *outcomeService) ReportOutcome(ctx context.Context, telegramID int64, win bool) (*OutcomeResult, error) {
	lock := s.locks.get(telegramID)
	lock.Lock()
	defer lock.Unlock()

	key := fmt.Sprintf(common.KeyPendingTrade, telegramID)
	trade, found := cache.GetTyped[dto.PendingTrade](s.cache, key)
	if !found {
		return nil, ErrNoActiveTrade
	}

	stats, err := s.getOrCreateLocked(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	s.rolloverDaily(stats, time.Now())
	s.apply(stats, trade.Symbol, win)

	if err := s.statsRepo.Save(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to save user stats: %w", err)
	}

	s.cache.Delete(key)

	s.logger.InfoContext(ctx, "trade outcome recorded",
		logger.Int64Field("telegram_id", telegramID),
		logger.StringField("symbol", trade.Symbol),
		logger.BoolField("win", win),
		logger.IntField("playback_step", stats.PlaybackStep))

	return &OutcomeResult{
		Trade:     trade,
		Win:       win,
		Stats:     *stats,
		NextQuote: s.sizer.Quote(stats.Balance, stats.PlaybackStep),
	}, nil
}

func (s *outcomeService) Stats(ctx context.Context, telegramID int64) (*model.UserStats, error) {
	lock := s.locks.get(telegramID)
	lock.Lock()
	defer lock.Unlock()

	stats, err := s.getOrCreateLocked(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	// The daily bucket rolls over lazily: a read on a new day resets it.
	if s.rolloverDaily(stats, time.Now()) {
		if err := s.statsRepo.Save(ctx, stats); err != nil {
			return nil, fmt.Errorf("failed to save user stats: %w", err)
		}
	}

	return stats, nil
}

func (s *outcomeService) SetBalance(ctx context.Context, telegramID int64, balance float64) error {
	lock := s.locks.get(telegramID)
	lock.Lock()
	defer lock.Unlock()

	stats, err := s.getOrCreateLocked(ctx, telegramID)
	if err != nil {
		return err
	}

	stats.Balance = balance
	if err := s.statsRepo.Save(ctx, stats); err != nil {
		return fmt.Errorf("failed to save user stats: %w", err)
	}
	return nil
}

func (s *outcomeService) rolloverDaily(stats *model.UserStats, now time.Time) bool {
	today := utils.DateOnly(now)
	if stats.DailyDate == today {
		return false
	}

	stats.DailyDate = today
	stats.DailyWins = 0
	stats.DailyLosses = 0
	stats.DailyStreak = 0
	return true
}

func (s *outcomeService) apply(stats *model.UserStats, symbol string, win bool) {
	stats.Trades++

	if win {
		stats.Wins++
		stats.DailyWins++
		stats.CurrentStreak = nextStreak(stats.CurrentStreak, true)
		stats.DailyStreak = nextStreak(stats.DailyStreak, true)
		stats.PlaybackStep = 0
	} else {
		stats.Losses++
		stats.DailyLosses++
		stats.CurrentStreak = nextStreak(stats.CurrentStreak, false)
		stats.DailyStreak = nextStreak(stats.DailyStreak, false)
		stats.PlaybackStep++
		if stats.PlaybackStep > s.sizer.MaxStep() {
			stats.PlaybackStep = 0
		}
	}

	if stats.CurrentStreak > stats.BestStreak {
		stats.BestStreak = stats.CurrentStreak
	}
	if stats.CurrentStreak < stats.WorstStreak {
		stats.WorstStreak = stats.CurrentStreak
	}

	breakdown, err := stats.MarketBreakdown()
	if err != nil {
		// A corrupt column should not block the outcome; start a fresh map.
		s.logger.Error("failed to decode per-market breakdown", logger.ErrorField(err))
		breakdown = make(map[string]model.MarketRecord)
	}
	record := breakdown[symbol]
	if win {
		record.Wins++
	} else {
		record.Losses++
	}
	breakdown[symbol] = record
	if err := stats.SetMarketBreakdown(breakdown); err != nil {
		s.logger.Error("failed to encode per-market breakdown", logger.ErrorField(err))
	}
}

// nextStreak continues a run in the same direction or flips to ±1.
func nextStreak(prev int, win bool) int {
	if win {
		if prev > 0 {
			return prev + 1
		}
		return 1
	}
	if prev < 0 {
		return prev - 1
	}
	return -1
}
