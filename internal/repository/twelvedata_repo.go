package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"forex-signals/config"
	"forex-signals/internal/dto"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/common"
	"forex-signals/pkg/httpclient"
	"forex-signals/pkg/logger"

	"golang.org/x/time/rate"
)

// ErrMarketDataUnavailable covers every provider failure mode: transport
// errors, non-OK statuses, malformed payloads. Callers treat it as transient.
var ErrMarketDataUnavailable = errors.New("market data unavailable")

const tdDatetimeLayout = "2006-01-02 15:04:05"

type MarketDataRepository interface {
	GetPriceSeries(ctx context.Context, param dto.GetPriceSeriesParam) (dto.PriceSeries, error)
}

type twelveDataRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
}

func NewTwelveDataRepository(cfg *config.Config, inmemoryCache cache.Cache, log *logger.Logger) MarketDataRepository {
	maxPerMin := cfg.MarketData.MaxRequestPerMin
	if maxPerMin <= 0 {
		maxPerMin = 1
	}
	requestLimiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMin)), 1)

	return &twelveDataRepository{
		httpClient:     httpclient.New(cfg.MarketData.BaseURL, cfg.MarketData.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		cache:          inmemoryCache,
		requestLimiter: requestLimiter,
	}
}

func (r *twelveDataRepository) GetPriceSeries(ctx context.Context, param dto.GetPriceSeriesParam) (dto.PriceSeries, error) {
	cacheKey := fmt.Sprintf(common.KeyPriceSeries, param.Symbol)
	if series, ok := cache.GetTyped[dto.PriceSeries](r.cache, cacheKey); ok {
		return series, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"symbol":     param.Symbol,
		"interval":   param.Interval,
		"outputsize": strconv.Itoa(param.OutputSize),
		"apikey":     r.cfg.MarketData.APIKey,
	}

	var payload dto.TwelveDataTimeSeries
	resp, err := r.httpClient.Get(ctx, "/time_series", queryParams, nil, &payload)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to fetch time series",
			logger.StringField("symbol", param.Symbol),
			logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "time series request returned non-OK status",
			logger.StringField("symbol", param.Symbol),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("%w: status %d", ErrMarketDataUnavailable, resp.StatusCode)
	}

	if payload.Status != "ok" {
		return nil, fmt.Errorf("%w: provider status %q", ErrMarketDataUnavailable, payload.Status)
	}

	series, err := r.toPriceSeries(payload.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}

	r.cache.Set(cacheKey, series, r.cfg.MarketData.CacheTTL)

	return series, nil
}

// toPriceSeries parses the provider's newest-first decimal strings and
// reverses into oldest-first order.
func (r *twelveDataRepository) toPriceSeries(values []dto.TwelveDataBar) (dto.PriceSeries, error) {
	series := make(dto.PriceSeries, len(values))
	for i, v := range values {
		open, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid open %q: %v", v.Open, err)
		}
		high, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid high %q: %v", v.High, err)
		}
		low, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid low %q: %v", v.Low, err)
		}
		closePrice, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid close %q: %v", v.Close, err)
		}
		ts, err := time.Parse(tdDatetimeLayout, v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("invalid datetime %q: %v", v.Datetime, err)
		}

		series[len(values)-1-i] = dto.PriceBar{
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Timestamp: ts,
		}
	}
	return series, nil
}
