package service

import (
	"context"
	"time"

	"forex-signals/config"
	"forex-signals/internal/dto"
	"forex-signals/internal/indicator"
	"forex-signals/internal/model"
	"forex-signals/internal/repository"
	"forex-signals/internal/strategy"
	"forex-signals/pkg/logger"
)

type SignalService interface {
	// RequestSignal runs the full pipeline for one user and market. ok is
	// false when current conditions simply produce no setup; errors cover
	// access, data availability and the pending-trade conflict. Nothing is
	// persisted unless a signal is actually issued.
	RequestSignal(ctx context.Context, telegramID int64, symbol string) (signal *dto.Signal, ok bool, err error)
}

type signalService struct {
	cfg            *config.Config
	logger         *logger.Logger
	engine         *indicator.Engine
	policy         *strategy.DecisionPolicy
	sizer          *RiskSizer
	accessService  AccessService
	outcomeService OutcomeService
	marketDataRepo repository.MarketDataRepository
	signalRepo     repository.SignalRepository
	aiRepo         repository.AIRepository
}

func NewSignalService(
	cfg *config.Config,
	log *logger.Logger,
	engine *indicator.Engine,
	policy *strategy.DecisionPolicy,
	sizer *RiskSizer,
	accessService AccessService,
	outcomeService OutcomeService,
	marketDataRepo repository.MarketDataRepository,
	signalRepo repository.SignalRepository,
	aiRepo repository.AIRepository,
) SignalService {
	return &signalService{
		cfg:            cfg,
		logger:         log,
		engine:         engine,
		policy:         policy,
		sizer:          sizer,
		accessService:  accessService,
		outcomeService: outcomeService,
		marketDataRepo: marketDataRepo,
		signalRepo:     signalRepo,
		aiRepo:         aiRepo,
	}
}

func (s *signalService) RequestSignal(ctx context.Context, telegramID int64, symbol string) (*dto.Signal, bool, error) {
	allowed, _, err := s.accessService.HasAccess(ctx, telegramID)
	if err != nil {
		return nil, false, err
	}
	if !allowed {
		return nil, false, ErrAccessDenied
	}

	series, err := s.marketDataRepo.GetPriceSeries(ctx, dto.GetPriceSeriesParam{
		Symbol:     symbol,
		Interval:   s.cfg.MarketData.Interval,
		OutputSize: s.cfg.MarketData.OutputSize,
	})
	if err != nil {
		return nil, false, err
	}

	snapshot, err := s.engine.Evaluate(series)
	if err != nil {
		return nil, false, err
	}

	closed, ok := series.LastClosed()
	if !ok {
		return nil, false, indicator.ErrInsufficientData
	}

	signal, ok := s.policy.Decide(symbol, snapshot, closed, time.Now())
	if !ok {
		s.logger.DebugContext(ctx, "no signal for current conditions",
			logger.StringField("symbol", symbol),
			logger.Float64Field("rsi", snapshot.RSI))
		return nil, false, nil
	}

	stats, err := s.outcomeService.GetOrCreateStats(ctx, telegramID)
	if err != nil {
		return nil, false, err
	}

	quote := s.sizer.Quote(stats.Balance, stats.PlaybackStep)
	signal.StakeAmount = quote.StakeAmount
	signal.RiskPercent = quote.RiskPercent
	signal.PlaybackStep = quote.PlaybackStep

	if err := s.outcomeService.RegisterSignal(ctx, telegramID, signal); err != nil {
		return nil, false, err
	}

	// The log row is observability, not state the pipeline depends on; a
	// failed insert must not withhold an already registered signal.
	if err := s.signalRepo.Create(ctx, &model.Signal{
		TelegramID:  telegramID,
		Symbol:      signal.Symbol,
		Direction:   signal.Direction,
		Confidence:  signal.Confidence,
		RiskPercent: signal.RiskPercent,
		StakeAmount: signal.StakeAmount,
		IssuedAt:    signal.IssuedAt,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist signal log", logger.ErrorField(err))
	}

	s.attachCommentary(ctx, signal)

	s.logger.InfoContext(ctx, "signal issued",
		logger.Int64Field("telegram_id", telegramID),
		logger.StringField("symbol", signal.Symbol),
		logger.StringField("direction", signal.Direction),
		logger.IntField("confidence", signal.Confidence),
		logger.Float64Field("stake", signal.StakeAmount))

	return signal, true, nil
}

// attachCommentary is best-effort: commentary never blocks or fails a signal.
func (s *signalService) attachCommentary(ctx context.Context, signal *dto.Signal) {
	if s.aiRepo == nil {
		return
	}

	commentaryCtx, cancel := context.WithTimeout(ctx, s.cfg.Gemini.Timeout)
	defer cancel()

	commentary, err := s.aiRepo.GenerateCommentary(commentaryCtx, signal)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to generate signal commentary", logger.ErrorField(err))
		return
	}
	signal.Commentary = commentary
}
