package service

import (
	"context"
	"testing"
	"time"

	"forex-signals/config"
	"forex-signals/internal/dto"
	"forex-signals/internal/indicator"
	"forex-signals/internal/model"
	"forex-signals/internal/repository"
	"forex-signals/internal/strategy"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarketDataRepo struct {
	series dto.PriceSeries
	err    error
}

func (f *fakeMarketDataRepo) GetPriceSeries(_ context.Context, _ dto.GetPriceSeriesParam) (dto.PriceSeries, error) {
	return f.series, f.err
}

type fakeSignalRepo struct {
	created []model.Signal
}

func (f *fakeSignalRepo) Create(_ context.Context, signal *model.Signal, _ ...utils.DBOption) error {
	f.created = append(f.created, *signal)
	return nil
}

func (f *fakeSignalRepo) Latest(_ context.Context) (*model.Signal, error) {
	if len(f.created) == 0 {
		return nil, nil
	}
	latest := f.created[len(f.created)-1]
	return &latest, nil
}

func (f *fakeSignalRepo) DeleteIssuedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// risingSeries trends up with bullish bars; enough for the trend-only tier.
func risingSeries(n int) dto.PriceSeries {
	series := make(dto.PriceSeries, n)
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	price := 1.1000
	for i := range series {
		price += 0.0005
		series[i] = dto.PriceBar{
			Open:      price - 0.0003,
			High:      price + 0.0001,
			Low:       price - 0.0004,
			Close:     price,
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute),
		}
	}
	return series
}

// fallingBullishSeries trends down but every bar closes above its open, so no
// tier matches in either mode.
func fallingBullishSeries(n int) dto.PriceSeries {
	series := make(dto.PriceSeries, n)
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	price := 1.2000
	for i := range series {
		price -= 0.0005
		series[i] = dto.PriceBar{
			Open:      price - 0.0001,
			High:      price + 0.0002,
			Low:       price - 0.0003,
			Close:     price,
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute),
		}
	}
	return series
}

type signalFixture struct {
	svc        SignalService
	outcome    OutcomeService
	signalRepo *fakeSignalRepo
	subs       *fakeSubscriptionRepo
	marketData *fakeMarketDataRepo
}

func newSignalFixture(t *testing.T, series dto.PriceSeries, marketErr error) *signalFixture {
	t.Helper()

	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Telegram.AdminID = 9999
	cfg.Signal = config.SignalConfig{
		Mode:              strategy.ModePermissive,
		FastSpan:          20,
		SlowSpan:          50,
		RSIWindow:         14,
		PullbackThreshold: 0.002,
		BaseConfidence:    50,
		TrendBonus:        20,
		RSIBonus:          20,
		BuyRSILow:         45,
		BuyRSIHigh:        65,
		SellRSILow:        35,
		SellRSIHigh:       55,
		ExpiryMinutes:     5,
	}
	cfg.Risk.Table = []float64{2, 3, 5}
	cfg.Risk.DefaultBalance = 100
	cfg.MarketData.Interval = "5min"
	cfg.MarketData.OutputSize = 120

	engine := indicator.NewEngine(cfg.Signal.FastSpan, cfg.Signal.SlowSpan, cfg.Signal.RSIWindow)
	policy := strategy.NewDecisionPolicy(&cfg.Signal)
	sizer := NewRiskSizer(cfg.Risk.Table)

	subs := &fakeSubscriptionRepo{subs: make(map[int64]*model.Subscription)}
	codes := &fakeCodeRepo{codes: make(map[string]*model.ActivationCode)}
	users := &fakeUserRepo{users: make(map[int64]*model.User)}
	statsRepo := newFakeStatsRepo()
	signalRepo := &fakeSignalRepo{}
	marketData := &fakeMarketDataRepo{series: series, err: marketErr}

	accessService := NewAccessService(cfg, log, users, subs, codes, fakeUnitOfWork{})
	outcomeService := NewOutcomeService(cfg, log, statsRepo, cache.NewCache(time.Minute, time.Minute), sizer)
	svc := NewSignalService(cfg, log, engine, policy, sizer, accessService, outcomeService, marketData, signalRepo, nil)

	return &signalFixture{
		svc:        svc,
		outcome:    outcomeService,
		signalRepo: signalRepo,
		subs:       subs,
		marketData: marketData,
	}
}

func subscribe(f *signalFixture, telegramID int64) {
	f.subs.subs[telegramID] = &model.Subscription{
		TelegramID: telegramID,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
}

func TestRequestSignal_IssuesAndRegisters(t *testing.T) {
	f := newSignalFixture(t, risingSeries(60), nil)
	ctx := context.Background()
	const userID int64 = 7

	subscribe(f, userID)

	sig, ok, err := f.svc.RequestSignal(ctx, userID, "EUR/USD")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, dto.DirectionBuy, sig.Direction)
	assert.Equal(t, 70, sig.Confidence)
	assert.Equal(t, 2.0, sig.StakeAmount, "2%% of the default 100 balance at step 0")
	assert.Equal(t, 0, sig.PlaybackStep)

	pending, found := f.outcome.PendingTrade(userID)
	require.True(t, found)
	assert.Equal(t, "EUR/USD", pending.Symbol)

	require.Len(t, f.signalRepo.created, 1)
	assert.Equal(t, userID, f.signalRepo.created[0].TelegramID)
}

func TestRequestSignal_AccessDenied(t *testing.T) {
	f := newSignalFixture(t, risingSeries(60), nil)

	_, _, err := f.svc.RequestSignal(context.Background(), 8, "EUR/USD")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, f.signalRepo.created)
}

func TestRequestSignal_NoSignalPersistsNothing(t *testing.T) {
	f := newSignalFixture(t, fallingBullishSeries(60), nil)
	ctx := context.Background()
	const userID int64 = 9

	subscribe(f, userID)

	sig, ok, err := f.svc.RequestSignal(ctx, userID, "EUR/USD")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, sig)

	_, found := f.outcome.PendingTrade(userID)
	assert.False(t, found)
	assert.Empty(t, f.signalRepo.created)
}

func TestRequestSignal_MarketDataFailureMutatesNothing(t *testing.T) {
	f := newSignalFixture(t, nil, repository.ErrMarketDataUnavailable)
	ctx := context.Background()
	const userID int64 = 10

	subscribe(f, userID)

	_, _, err := f.svc.RequestSignal(ctx, userID, "EUR/USD")
	assert.ErrorIs(t, err, repository.ErrMarketDataUnavailable)

	_, found := f.outcome.PendingTrade(userID)
	assert.False(t, found)
	assert.Empty(t, f.signalRepo.created)
}

func TestRequestSignal_RejectsWhilePending(t *testing.T) {
	f := newSignalFixture(t, risingSeries(60), nil)
	ctx := context.Background()
	const userID int64 = 11

	subscribe(f, userID)

	_, ok, err := f.svc.RequestSignal(ctx, userID, "EUR/USD")
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = f.svc.RequestSignal(ctx, userID, "GBP/USD")
	assert.ErrorIs(t, err, ErrTradePending)
	assert.Len(t, f.signalRepo.created, 1, "rejected request must not log a signal")
}

func TestRequestSignal_InsufficientData(t *testing.T) {
	f := newSignalFixture(t, risingSeries(10), nil)
	ctx := context.Background()
	const userID int64 = 12

	subscribe(f, userID)

	_, _, err := f.svc.RequestSignal(ctx, userID, "EUR/USD")
	assert.ErrorIs(t, err, indicator.ErrInsufficientData)
}
