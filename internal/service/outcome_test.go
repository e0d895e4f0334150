package service

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"forex-signals/config"
	"forex-signals/internal/dto"
	"forex-signals/internal/model"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeStatsRepo struct {
	stats map[int64]*model.UserStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[int64]*model.UserStats)}
}

func (f *fakeStatsRepo) Get(_ context.Context, telegramID int64, _ ...utils.DBOption) (*model.UserStats, error) {
	s, ok := f.stats[telegramID]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (f *fakeStatsRepo) Save(_ context.Context, stats *model.UserStats, _ ...utils.DBOption) error {
	clone := *stats
	f.stats[stats.TelegramID] = &clone
	return nil
}

func (f *fakeStatsRepo) AggregateTotals(_ context.Context) (int64, int64, int64, error) {
	var trades, wins, losses int64
	for _, s := range f.stats {
		trades += int64(s.Trades)
		wins += int64(s.Wins)
		losses += int64(s.Losses)
	}
	return trades, wins, losses, nil
}

func newOutcomeFixture(t *testing.T) (OutcomeService, *fakeStatsRepo) {
	t.Helper()

	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Risk.Table = []float64{2, 3, 5}
	cfg.Risk.DefaultBalance = 100

	repo := newFakeStatsRepo()
	svc := NewOutcomeService(cfg, log, repo, cache.NewCache(time.Minute, time.Minute), NewRiskSizer(cfg.Risk.Table))
	return svc, repo
}

func registerTrade(t *testing.T, svc OutcomeService, telegramID int64, symbol string) {
	t.Helper()
	err := svc.RegisterSignal(context.Background(), telegramID, &dto.Signal{
		Symbol:    symbol,
		Direction: dto.DirectionBuy,
		IssuedAt:  time.Now(),
	})
	require.NoError(t, err)
}

func TestReportOutcome_StreakProgression(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1001

	outcomes := []bool{true, true, false, true}
	wantStreaks := []int{1, 2, -1, 1}

	for i, win := range outcomes {
		registerTrade(t, svc, userID, "EUR/USD")
		result, err := svc.ReportOutcome(ctx, userID, win)
		require.NoError(t, err)
		assert.Equal(t, wantStreaks[i], result.Stats.CurrentStreak, "after outcome %d", i)
	}

	stats, err := svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.BestStreak)
	assert.Equal(t, -1, stats.WorstStreak)
	assert.Equal(t, 4, stats.Trades)
	assert.Equal(t, 3, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 75.0, stats.WinRate(), 1e-9)
}

func TestReportOutcome_PlaybackStepWrapsAfterMaxStep(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1002

	wantSteps := []int{1, 2, 0} // third consecutive loss wraps to the base step

	for i, want := range wantSteps {
		registerTrade(t, svc, userID, "GBP/USD")
		result, err := svc.ReportOutcome(ctx, userID, false)
		require.NoError(t, err)
		assert.Equal(t, want, result.Stats.PlaybackStep, "after loss %d", i+1)
	}
}

func TestReportOutcome_WinResetsPlaybackStep(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1003

	registerTrade(t, svc, userID, "EUR/USD")
	_, err := svc.ReportOutcome(ctx, userID, false)
	require.NoError(t, err)

	registerTrade(t, svc, userID, "EUR/USD")
	result, err := svc.ReportOutcome(ctx, userID, true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.PlaybackStep)
	assert.Equal(t, 2.0, result.NextQuote.RiskPercent)
}

func TestReportOutcome_NoActiveTradeLeavesStatsUntouched(t *testing.T) {
	svc, repo := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1004

	stats, err := svc.GetOrCreateStats(ctx, userID)
	require.NoError(t, err)
	before := *stats

	_, err = svc.ReportOutcome(ctx, userID, true)
	assert.ErrorIs(t, err, ErrNoActiveTrade)

	after, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, before.Trades, after.Trades)
	assert.Equal(t, before.CurrentStreak, after.CurrentStreak)
	assert.Equal(t, before.PlaybackStep, after.PlaybackStep)
}

func TestRegisterSignal_RejectsSecondPendingTrade(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1005

	registerTrade(t, svc, userID, "EUR/USD")

	err := svc.RegisterSignal(ctx, userID, &dto.Signal{Symbol: "GBP/USD", Direction: dto.DirectionSell, IssuedAt: time.Now()})
	assert.ErrorIs(t, err, ErrTradePending)

	// Resolving the first trade frees the slot.
	_, err = svc.ReportOutcome(ctx, userID, true)
	require.NoError(t, err)
	registerTrade(t, svc, userID, "GBP/USD")
}

func TestReportOutcome_DailyBucketRollsOverLazily(t *testing.T) {
	svc, repo := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1006

	registerTrade(t, svc, userID, "EUR/USD")
	_, err := svc.ReportOutcome(ctx, userID, true)
	require.NoError(t, err)

	// Backdate the bucket to simulate the next calendar day.
	stored := repo.stats[userID]
	stored.DailyDate = utils.DateOnly(time.Now().AddDate(0, 0, -1))
	stored.DailyWins = 5
	stored.DailyLosses = 3
	stored.DailyStreak = 4

	registerTrade(t, svc, userID, "EUR/USD")
	result, err := svc.ReportOutcome(ctx, userID, false)
	require.NoError(t, err)

	assert.Equal(t, utils.DateOnly(time.Now()), result.Stats.DailyDate)
	assert.Equal(t, 0, result.Stats.DailyWins, "yesterday's bucket must not leak")
	assert.Equal(t, 1, result.Stats.DailyLosses)
	assert.Equal(t, -1, result.Stats.DailyStreak)
	// Lifetime counters keep accumulating across the rollover.
	assert.Equal(t, 2, result.Stats.Trades)
}

func TestReportOutcome_PerMarketBreakdown(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1007

	registerTrade(t, svc, userID, "EUR/USD")
	_, err := svc.ReportOutcome(ctx, userID, true)
	require.NoError(t, err)

	registerTrade(t, svc, userID, "GOLD")
	result, err := svc.ReportOutcome(ctx, userID, false)
	require.NoError(t, err)

	breakdown, err := result.Stats.MarketBreakdown()
	require.NoError(t, err)
	assert.Equal(t, model.MarketRecord{Wins: 1, Losses: 0}, breakdown["EUR/USD"])
	assert.Equal(t, model.MarketRecord{Wins: 0, Losses: 1}, breakdown["GOLD"])
}

func TestGetOrCreateStats_DefaultBalance(t *testing.T) {
	svc, _ := newOutcomeFixture(t)

	stats, err := svc.GetOrCreateStats(context.Background(), 1008)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stats.Balance)
	assert.Equal(t, 0, stats.Trades)
}

// Many goroutines hammer one user's ledger with full register-report cycles.
// Serialization means no cycle is lost and no cycle is double-counted: the
// final trade count and streak equal the number of cycles exactly.
func TestOutcome_ConcurrentCyclesSerializePerUser(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1010
	const workers = 8
	const cyclesPerWorker = 5

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for n := 0; n < cyclesPerWorker; n++ {
				for {
					err := svc.RegisterSignal(ctx, userID, &dto.Signal{
						Symbol:    "EUR/USD",
						Direction: dto.DirectionBuy,
						IssuedAt:  time.Now(),
					})
					if errors.Is(err, ErrTradePending) {
						runtime.Gosched()
						continue
					}
					if err != nil {
						return err
					}
					break
				}
				if _, err := svc.ReportOutcome(ctx, userID, true); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	const total = workers * cyclesPerWorker
	stats, err := svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, total, stats.Trades)
	assert.Equal(t, total, stats.Wins)
	assert.Equal(t, 0, stats.Losses)
	assert.Equal(t, total, stats.CurrentStreak, "all-win run must form one unbroken streak")
	assert.Equal(t, total, stats.DailyWins)
}

func TestOutcome_ConcurrentUsersStayIndependent(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	users := []int64{2001, 2002, 2003}
	const cycles = 10

	var g errgroup.Group
	for _, userID := range users {
		g.Go(func() error {
			for n := 0; n < cycles; n++ {
				err := svc.RegisterSignal(ctx, userID, &dto.Signal{
					Symbol:    "GBP/USD",
					Direction: dto.DirectionSell,
					IssuedAt:  time.Now(),
				})
				if err != nil {
					return err
				}
				if _, err := svc.ReportOutcome(ctx, userID, n%2 == 0); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, userID := range users {
		stats, err := svc.Stats(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, cycles, stats.Trades, "user %d", userID)
		assert.Equal(t, 5, stats.Wins, "user %d", userID)
		assert.Equal(t, 5, stats.Losses, "user %d", userID)
	}
}

func TestSetBalance(t *testing.T) {
	svc, _ := newOutcomeFixture(t)
	ctx := context.Background()
	const userID int64 = 1009

	require.NoError(t, svc.SetBalance(ctx, userID, 250))

	stats, err := svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, stats.Balance)
}
