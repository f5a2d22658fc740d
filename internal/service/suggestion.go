package service

import (
	"context"
	"errors"
	"fmt"
	"stockgenius/internal/dto"
	"stockgenius/internal/prompt"
	"stockgenius/internal/repository"
	"stockgenius/pkg/cache"
	"stockgenius/pkg/logger"
	"stockgenius/pkg/utils"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultFullTierAttempts = 3

var errIncompleteMarketData = errors.New("incomplete market data")

type SuggestionService interface {
	Suggest(ctx context.Context, symbol string) (*dto.SuggestionResponse, error)
}

type suggestionService struct {
	log        *logger.Logger
	cache      cache.Cache
	marketRepo repository.MarketDataRepository
	stockRepo  repository.StockRepository
	aiRepo     repository.AIRepository
	tracer     trace.Tracer

	maxAttempts  int
	isOverloaded OverloadClassifier
	sleep        func(ctx context.Context, d time.Duration) error
	now          func() time.Time
}

func NewSuggestionService(
	log *logger.Logger,
	inmemoryCache cache.Cache,
	marketRepo repository.MarketDataRepository,
	stockRepo repository.StockRepository,
	aiRepo repository.AIRepository,
) SuggestionService {
	return &suggestionService{
		log:          log,
		cache:        inmemoryCache,
		marketRepo:   marketRepo,
		stockRepo:    stockRepo,
		aiRepo:       aiRepo,
		tracer:       otel.Tracer("stockgenius/service/suggestion"),
		maxAttempts:  defaultFullTierAttempts,
		isOverloaded: IsOverloadError,
		sleep:        sleepContext,
		now:          time.Now,
	}
}

// Suggest returns an AI analysis for symbol. It serves the cache when possible, otherwise
// degrades from the full tier (live data, retried on overload) to the basic tier (persisted
// fundamentals) and finally to the fallback tier when the model is still overloaded.
func (s *suggestionService) Suggest(ctx context.Context, symbol string) (*dto.SuggestionResponse, error) {
	symbol = utils.NormalizeSymbol(symbol)
	ctx, span := s.tracer.Start(ctx, "SuggestionService.Suggest", trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	log := s.log.FromContext(ctx).With(logger.StringField("symbol", symbol))
	cacheKey := fmt.Sprintf(dto.KeyAISuggestion, symbol)

	if cached, found := cache.GetJSON[dto.CachedSuggestion](ctx, s.cache, cacheKey); found {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		log.Debug("AI suggestion served from cache")
		return dto.FromCachedSuggestion(cached), nil
	}

	info, err := s.fetchMarketData(ctx, symbol)
	if err != nil {
		log.Warn("Market data fetch failed, falling back to database", logger.ErrorField(err))
	} else {
		resp, err := s.generateFull(ctx, log, cacheKey, info)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "full tier failed")
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
		log.Warn("Model overloaded, falling back to simplified analysis", logger.IntField("attempts", s.maxAttempts))
	}

	resp, err := s.generateFromDatabase(ctx, log, cacheKey, symbol)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "database tier failed")
		return nil, err
	}
	return resp, nil
}

// fetchMarketData issues all six gateway calls at once and waits for every one of them.
func (s *suggestionService) fetchMarketData(ctx context.Context, symbol string) (dto.StockInfo, error) {
	ctx, span := s.tracer.Start(ctx, "SuggestionService.fetchMarketData")
	defer span.End()

	var (
		intraday, daily *dto.AlphaVantageTimeSeries
		sma, rsi        *dto.AlphaVantageIndicator
		overview        *dto.AlphaVantageOverview
		quote           *dto.AlphaVantageGlobalQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		intraday, err = s.marketRepo.GetIntraday(gctx, symbol, dto.DefaultIntradayInterval)
		return err
	})
	g.Go(func() (err error) {
		daily, err = s.marketRepo.GetDaily(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		sma, err = s.marketRepo.GetSMA(gctx, symbol, dto.DefaultSMAPeriod)
		return err
	})
	g.Go(func() (err error) {
		rsi, err = s.marketRepo.GetRSI(gctx, symbol, dto.DefaultRSIPeriod)
		return err
	})
	g.Go(func() (err error) {
		overview, err = s.marketRepo.GetOverview(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		quote, err = s.marketRepo.GetGlobalQuote(gctx, symbol)
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return dto.StockInfo{}, err
	}

	if intraday == nil || len(intraday.Series) == 0 ||
		daily == nil || len(daily.Series) == 0 ||
		quote == nil || quote.GlobalQuote.Price == "" {
		return dto.StockInfo{}, errIncompleteMarketData
	}

	return dto.NewStockInfo(symbol, overview, quote, sma, rsi), nil
}

// generateFull returns (nil, nil) when every attempt hit an overload, so the caller can degrade.
func (s *suggestionService) generateFull(ctx context.Context, log *logger.Logger, cacheKey string, info dto.StockInfo) (*dto.SuggestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SuggestionService.generateFull")
	defer span.End()

	text := prompt.Full(info)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		suggestion, err := s.aiRepo.Generate(ctx, text)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt))
			return s.respond(ctx, log, cacheKey, dto.CachedSuggestion{
				Suggestion: suggestion,
				PromptType: dto.PromptTypeFull,
				DataSource: dto.DataSourceRealtime,
			}, dto.TTLSuggestionRealtime), nil
		}

		if !s.isOverloaded(err) {
			log.Error("AI generation failed", logger.ErrorField(err), logger.IntField("attempt", attempt))
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}

		if attempt == s.maxAttempts {
			break
		}

		wait := time.Duration(1<<attempt) * time.Second
		log.Warn("Model overloaded, retrying",
			logger.IntField("attempt", attempt),
			logger.DurationField("backoff", wait),
		)
		if err := s.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func (s *suggestionService) generateFromDatabase(ctx context.Context, log *logger.Logger, cacheKey, symbol string) (*dto.SuggestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SuggestionService.generateFromDatabase")
	defer span.End()

	stock, err := s.stockRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock %s: %w", symbol, err)
	}
	if stock == nil {
		return nil, fmt.Errorf("%w for symbol: %s", ErrNoData, symbol)
	}

	fundamentals := dto.FundamentalsFromStock(*stock)

	suggestion, err := s.aiRepo.Generate(ctx, prompt.Basic(fundamentals))
	if err == nil {
		return s.respond(ctx, log, cacheKey, dto.CachedSuggestion{
			Suggestion: suggestion,
			PromptType: dto.PromptTypeBasic,
			DataSource: dto.DataSourceDatabase,
			Note:       dto.NoteDatabaseFallback,
		}, dto.TTLSuggestionDatabase), nil
	}
	if !s.isOverloaded(err) {
		log.Error("AI generation failed on basic prompt", logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	log.Warn("Model overloaded on basic prompt, using fallback prompt", logger.ErrorField(err))
	span.AddEvent("fallback_prompt")

	suggestion, err = s.aiRepo.Generate(ctx, prompt.Fallback(fundamentals))
	if err != nil {
		log.Error("AI generation failed on fallback prompt", logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return s.respond(ctx, log, cacheKey, dto.CachedSuggestion{
		Suggestion: suggestion,
		PromptType: dto.PromptTypeFallback,
		DataSource: dto.DataSourceDatabase,
		Note:       dto.NoteHighLoad,
	}, dto.TTLSuggestionDatabase), nil
}

// respond caches the entry and builds the response. A failed cache write is only logged.
func (s *suggestionService) respond(ctx context.Context, log *logger.Logger, cacheKey string, entry dto.CachedSuggestion, ttl time.Duration) *dto.SuggestionResponse {
	now := s.now().UTC()
	entry.Timestamp = &now

	if err := s.cache.Set(ctx, cacheKey, entry, ttl); err != nil {
		log.Warn("Failed to cache AI suggestion", logger.ErrorField(err))
	}

	return &dto.SuggestionResponse{
		Success:    true,
		FromCache:  false,
		Suggestion: entry.Suggestion,
		PromptType: entry.PromptType,
		DataSource: entry.DataSource,
		Timestamp:  entry.Timestamp,
		Note:       entry.Note,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
