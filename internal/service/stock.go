package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"stockgenius/internal/dto"
	"stockgenius/internal/repository"
	"stockgenius/pkg/cache"
	"stockgenius/pkg/logger"
	"stockgenius/pkg/utils"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var candleLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

type StockService interface {
	List(ctx context.Context, param dto.ListStocksParam) (*dto.StockListResult, error)
	GetLive(ctx context.Context, symbol string) (*dto.LiveStockData, bool, error)
	GetCandles(ctx context.Context, symbol, interval string) (*dto.CandleResult, bool, error)
	GetPrice(ctx context.Context, symbol string) (*dto.PriceResult, bool, error)
}

type stockService struct {
	log         *logger.Logger
	cache       cache.Cache
	marketRepo  repository.MarketDataRepository
	finnhubRepo repository.FinnhubRepository
	stockRepo   repository.StockRepository
	tracer      trace.Tracer
}

func NewStockService(
	log *logger.Logger,
	inmemoryCache cache.Cache,
	marketRepo repository.MarketDataRepository,
	finnhubRepo repository.FinnhubRepository,
	stockRepo repository.StockRepository,
) StockService {
	return &stockService{
		log:         log,
		cache:       inmemoryCache,
		marketRepo:  marketRepo,
		finnhubRepo: finnhubRepo,
		stockRepo:   stockRepo,
		tracer:      otel.Tracer("stockgenius/service/stock"),
	}
}

func (s *stockService) List(ctx context.Context, param dto.ListStocksParam) (*dto.StockListResult, error) {
	stocks, total, err := s.stockRepo.List(ctx, param)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list stocks", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}

	return &dto.StockListResult{
		Total:        total,
		TotalPages:   param.TotalPages(total),
		CurrentPage:  param.Page,
		ItemsPerPage: param.Limit,
		Stocks:       stocks,
	}, nil
}

// GetLive returns the live snapshot for a symbol the provider recognises. The first successful
// fetch of an unknown symbol also stores a stock record built from its overview.
func (s *stockService) GetLive(ctx context.Context, symbol string) (*dto.LiveStockData, bool, error) {
	symbol = utils.NormalizeSymbol(symbol)
	ctx, span := s.tracer.Start(ctx, "StockService.GetLive", trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	cacheKey := fmt.Sprintf(dto.KeyStockLive, symbol)
	if cached, found := cache.GetJSON[dto.LiveStockData](ctx, s.cache, cacheKey); found {
		return &cached, true, nil
	}

	search, err := s.marketRepo.SearchSymbol(ctx, symbol)
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to search symbol %s: %w", symbol, err)
	}
	if _, ok := search.ExactMatch(symbol); !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	data := dto.LiveStockData{Symbol: symbol}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Intraday, err = s.marketRepo.GetIntraday(gctx, symbol, dto.DefaultIntradayInterval)
		return err
	})
	g.Go(func() (err error) {
		data.SMA, err = s.marketRepo.GetSMA(gctx, symbol, dto.DefaultSMAPeriod)
		return err
	})
	g.Go(func() (err error) {
		data.RSI, err = s.marketRepo.GetRSI(gctx, symbol, dto.DefaultRSIPeriod)
		return err
	})
	g.Go(func() (err error) {
		data.Fundamentals, err = s.marketRepo.GetOverview(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to fetch live data for %s: %w", symbol, err)
	}

	if err := s.cache.Set(ctx, cacheKey, data, dto.TTLStockLive); err != nil {
		s.log.WarnContext(ctx, "Failed to cache live stock data", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	s.ensureStockRecord(ctx, symbol, data.Fundamentals)

	return &data, false, nil
}

// ensureStockRecord never fails the request; database problems are only logged.
func (s *stockService) ensureStockRecord(ctx context.Context, symbol string, overview *dto.AlphaVantageOverview) {
	if overview == nil || strings.TrimSpace(overview.Name) == "" {
		return
	}

	existing, err := s.stockRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to look up stock record", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return
	}
	if existing != nil {
		return
	}

	stock := dto.StockFromOverview(symbol, *overview)
	if s.finnhubRepo != nil && s.finnhubRepo.Enabled() {
		profile, err := s.finnhubRepo.GetCompanyProfile(ctx, symbol)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to fetch company logo", logger.StringField("symbol", symbol), logger.ErrorField(err))
		} else if profile.Logo != "" {
			stock.LogoURL = utils.ToPointer(profile.Logo)
		}
	}

	created, err := s.stockRepo.CreateIfNotExists(ctx, &stock)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to create stock record", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return
	}
	if created {
		s.log.InfoContext(ctx, "Stock record created", logger.StringField("symbol", symbol))
	}
}

func (s *stockService) GetCandles(ctx context.Context, symbol, interval string) (*dto.CandleResult, bool, error) {
	symbol = utils.NormalizeSymbol(symbol)
	if interval == "" {
		interval = dto.DefaultCandleInterval
	}
	if !slices.Contains(dto.SupportedCandleIntervals(), interval) {
		return nil, false, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	ctx, span := s.tracer.Start(ctx, "StockService.GetCandles", trace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("interval", interval),
	))
	defer span.End()

	cacheKey := fmt.Sprintf(dto.KeyStockCandles, symbol, interval)
	if cached, found := cache.GetJSON[dto.CandleResult](ctx, s.cache, cacheKey); found {
		return &cached, true, nil
	}

	var (
		series *dto.AlphaVantageTimeSeries
		ttl    time.Duration
		err    error
	)
	if interval == dto.Interval1Day {
		series, err = s.marketRepo.GetDaily(ctx, symbol)
		ttl = dto.TTLCandlesDaily
	} else {
		series, err = s.marketRepo.GetIntraday(ctx, symbol, interval)
		ttl = dto.TTLCandlesIntraday
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to fetch candles for %s: %w", symbol, err)
	}

	result := dto.CandleResult{
		Symbol:   symbol,
		Interval: interval,
		Candles:  toCandles(series),
	}

	if err := s.cache.Set(ctx, cacheKey, result, ttl); err != nil {
		s.log.WarnContext(ctx, "Failed to cache candles", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	return &result, false, nil
}

// toCandles converts a provider series into bars sorted oldest first. Bars whose timestamp
// cannot be parsed are dropped.
func toCandles(series *dto.AlphaVantageTimeSeries) []dto.StockOHLCV {
	candles := make([]dto.StockOHLCV, 0)
	if series == nil {
		return candles
	}

	loc := time.UTC
	if tz := series.TimeZone(); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	for date, bar := range series.Series {
		ts, ok := parseBarTime(date, loc)
		if !ok {
			continue
		}
		volume, _ := strconv.ParseInt(strings.TrimSpace(bar.Volume), 10, 64)
		candles = append(candles, dto.StockOHLCV{
			Date:      date,
			Timestamp: ts.Unix(),
			Open:      dto.ParseFloat(bar.Open),
			High:      dto.ParseFloat(bar.High),
			Low:       dto.ParseFloat(bar.Low),
			Close:     dto.ParseFloat(bar.Close),
			Volume:    volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp < candles[j].Timestamp
	})
	return candles
}

func parseBarTime(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range candleLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *stockService) GetPrice(ctx context.Context, symbol string) (*dto.PriceResult, bool, error) {
	symbol = utils.NormalizeSymbol(symbol)
	cacheKey := fmt.Sprintf(dto.KeyStockPrice, symbol)
	if cached, found := cache.GetJSON[dto.PriceResult](ctx, s.cache, cacheKey); found {
		return &cached, true, nil
	}

	quote, err := s.marketRepo.GetGlobalQuote(ctx, symbol)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if quote == nil || quote.GlobalQuote.Price == "" {
		return nil, false, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	volume, _ := strconv.ParseInt(strings.TrimSpace(quote.GlobalQuote.Volume), 10, 64)
	result := dto.PriceResult{
		Symbol: symbol,
		Price:  dto.ParseFloat(quote.GlobalQuote.Price),
		Change: quote.GlobalQuote.ChangePercent,
		Volume: volume,
	}

	if err := s.cache.Set(ctx, cacheKey, result, dto.TTLStockPrice); err != nil {
		s.log.WarnContext(ctx, "Failed to cache price", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	return &result, false, nil
}
