package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"stockgenius/config"
	"stockgenius/internal/dto"
	"stockgenius/pkg/httpclient"
	"stockgenius/pkg/logger"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrAlphaVantage wraps every failure reported by the market data provider.
var ErrAlphaVantage = errors.New("alpha vantage error")

// MarketDataRepository exposes one call per upstream function. Symbols are passed through
// as given; callers normalise them. There is no retry at this layer.
type MarketDataRepository interface {
	GetIntraday(ctx context.Context, symbol, interval string) (*dto.AlphaVantageTimeSeries, error)
	GetDaily(ctx context.Context, symbol string) (*dto.AlphaVantageTimeSeries, error)
	GetSMA(ctx context.Context, symbol string, period int) (*dto.AlphaVantageIndicator, error)
	GetRSI(ctx context.Context, symbol string, period int) (*dto.AlphaVantageIndicator, error)
	GetOverview(ctx context.Context, symbol string) (*dto.AlphaVantageOverview, error)
	GetGlobalQuote(ctx context.Context, symbol string) (*dto.AlphaVantageGlobalQuote, error)
	SearchSymbol(ctx context.Context, keywords string) (*dto.AlphaVantageSearchResult, error)
}

type alphaVantageRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewAlphaVantageRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	return newAlphaVantageRepository(cfg, log, httpclient.New(log, cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.Timeout, ""))
}

func newAlphaVantageRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) *alphaVantageRepository {
	limit := rate.Inf
	if cfg.AlphaVantage.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.AlphaVantage.MaxRequestPerMinute))
	}

	return &alphaVantageRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

func (r *alphaVantageRepository) GetIntraday(ctx context.Context, symbol, interval string) (*dto.AlphaVantageTimeSeries, error) {
	if interval == "" {
		interval = dto.DefaultIntradayInterval
	}
	var result dto.AlphaVantageTimeSeries
	err := r.query(ctx, map[string]string{
		"function":   "TIME_SERIES_INTRADAY",
		"symbol":     symbol,
		"interval":   interval,
		"outputsize": "compact",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *alphaVantageRepository) GetDaily(ctx context.Context, symbol string) (*dto.AlphaVantageTimeSeries, error) {
	var result dto.AlphaVantageTimeSeries
	err := r.query(ctx, map[string]string{
		"function": "TIME_SERIES_DAILY",
		"symbol":   symbol,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *alphaVantageRepository) GetSMA(ctx context.Context, symbol string, period int) (*dto.AlphaVantageIndicator, error) {
	return r.indicator(ctx, "SMA", symbol, period)
}

func (r *alphaVantageRepository) GetRSI(ctx context.Context, symbol string, period int) (*dto.AlphaVantageIndicator, error) {
	return r.indicator(ctx, "RSI", symbol, period)
}

func (r *alphaVantageRepository) indicator(ctx context.Context, function, symbol string, period int) (*dto.AlphaVantageIndicator, error) {
	var result dto.AlphaVantageIndicator
	err := r.query(ctx, map[string]string{
		"function":    function,
		"symbol":      symbol,
		"interval":    "daily",
		"time_period": strconv.Itoa(period),
		"series_type": "close",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *alphaVantageRepository) GetOverview(ctx context.Context, symbol string) (*dto.AlphaVantageOverview, error) {
	var result dto.AlphaVantageOverview
	err := r.query(ctx, map[string]string{
		"function": "OVERVIEW",
		"symbol":   symbol,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *alphaVantageRepository) GetGlobalQuote(ctx context.Context, symbol string) (*dto.AlphaVantageGlobalQuote, error) {
	var result dto.AlphaVantageGlobalQuote
	err := r.query(ctx, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *alphaVantageRepository) SearchSymbol(ctx context.Context, keywords string) (*dto.AlphaVantageSearchResult, error) {
	var result dto.AlphaVantageSearchResult
	err := r.query(ctx, map[string]string{
		"function": "SYMBOL_SEARCH",
		"keywords": keywords,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *alphaVantageRepository) query(ctx context.Context, params map[string]string, dest interface{}) error {
	if !r.requestLimiter.Allow() {
		r.logger.DebugContext(ctx, "Alpha Vantage request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.AlphaVantage.MaxRequestPerMinute),
			logger.StringField("function", params["function"]),
		)
		if err := r.requestLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: wait for request limit: %v", ErrAlphaVantage, err)
		}
	}

	params["apikey"] = r.cfg.AlphaVantage.APIKey

	resp, err := r.httpClient.Get(ctx, "/query", params, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAlphaVantage, params["function"], err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Alpha Vantage returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("function", params["function"]),
		)
		return fmt.Errorf("%w: %s returned status %d", ErrAlphaVantage, params["function"], resp.StatusCode)
	}

	var status dto.AlphaVantageStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return fmt.Errorf("%w: %s: invalid response: %v", ErrAlphaVantage, params["function"], err)
	}
	if msg := status.Message(); msg != "" {
		return fmt.Errorf("%w: %s: %s", ErrAlphaVantage, params["function"], msg)
	}

	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrAlphaVantage, params["function"], err)
	}
	return nil
}
