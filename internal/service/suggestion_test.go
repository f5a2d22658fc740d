package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"stockgenius/internal/dto"
	"stockgenius/internal/model"
	"stockgenius/pkg/cache"
	"stockgenius/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errOverloaded = errors.New("Error 503, Message: The model is overloaded. Please try again later.")
	errBadRequest = errors.New("Error 400, Message: Request contains an invalid argument.")
	fixedNow      = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
)

// completeMarket serves recorded Alpha Vantage payloads for AAPL.
func completeMarket() *fakeMarketRepo {
	return &fakeMarketRepo{
		intraday: decodeFixture[dto.AlphaVantageTimeSeries]("aapl_intraday.json"),
		daily:    decodeFixture[dto.AlphaVantageTimeSeries]("aapl_daily.json"),
		sma:      decodeFixture[dto.AlphaVantageIndicator]("aapl_sma.json"),
		rsi:      decodeFixture[dto.AlphaVantageIndicator]("aapl_rsi.json"),
		overview: decodeFixture[dto.AlphaVantageOverview]("aapl_overview.json"),
		quote:    decodeFixture[dto.AlphaVantageGlobalQuote]("aapl_global_quote.json"),
	}
}

func decodeFixture[T any](name string) *T {
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		panic(err)
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		panic(fmt.Sprintf("decode %s: %v", name, err))
	}
	return v
}

func appleRecord() model.Stock {
	return model.Stock{ID: 1, Symbol: "AAPL", Name: "Apple Inc", Sector: "TECHNOLOGY", MarketCap: 3.2e12, PERatio: 33.1}
}

type suggestionFixture struct {
	svc    *suggestionService
	cache  cache.Cache
	market *fakeMarketRepo
	stocks *fakeStockRepo
	ai     *fakeAIRepo
	sleeps []time.Duration
}

func newSuggestionFixture(market *fakeMarketRepo, stocks *fakeStockRepo, results ...aiResult) *suggestionFixture {
	f := &suggestionFixture{
		cache:  cache.NewCache(time.Hour, time.Hour),
		market: market,
		stocks: stocks,
		ai:     &fakeAIRepo{results: results},
	}
	svc := NewSuggestionService(logger.NewNop(), f.cache, market, stocks, f.ai).(*suggestionService)
	svc.sleep = func(_ context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	}
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

func TestSuggest_CacheHitMakesNoCalls(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(appleRecord()), aiResult{text: "unused"})

	require.NoError(t, f.cache.Set(context.Background(), "ai:suggestion:AAPL", dto.CachedSuggestion{
		Suggestion: "Hold",
		PromptType: dto.PromptTypeFull,
		DataSource: dto.DataSourceRealtime,
	}, time.Minute))

	resp, err := f.svc.Suggest(context.Background(), "aapl")
	require.NoError(t, err)

	assert.True(t, resp.FromCache)
	assert.Equal(t, "Hold", resp.Suggestion)
	assert.Equal(t, dto.PromptTypeFull, resp.PromptType)
	assert.Equal(t, dto.DataSourceRealtime, resp.DataSource)
	assert.Zero(t, f.market.calls.Load())
	assert.Zero(t, f.ai.calls())
}

func TestSuggest_LegacyCacheEntryDefaults(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(), aiResult{text: "unused"})
	require.NoError(t, f.cache.Set(context.Background(), "ai:suggestion:MSFT", map[string]string{"suggestion": "Buy"}, time.Minute))

	resp, err := f.svc.Suggest(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, dto.PromptTypeUnknown, resp.PromptType)
	assert.Equal(t, dto.DataSourceCache, resp.DataSource)
}

func TestSuggest_FullTierFirstAttempt(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(), aiResult{text: "Buy AAPL"})

	resp, err := f.svc.Suggest(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.False(t, resp.FromCache)
	assert.Equal(t, "Buy AAPL", resp.Suggestion)
	assert.Equal(t, dto.PromptTypeFull, resp.PromptType)
	assert.Equal(t, dto.DataSourceRealtime, resp.DataSource)
	require.NotNil(t, resp.Timestamp)
	assert.Equal(t, fixedNow, *resp.Timestamp)
	assert.EqualValues(t, 6, f.market.calls.Load())
	assert.Empty(t, f.sleeps)
	assert.Contains(t, f.ai.prompts[0], "Fibonacci Levels")
	assert.Contains(t, f.ai.prompts[0], "RSI: 72.5000 (Overbought)")

	cached, found := cache.GetJSON[dto.CachedSuggestion](context.Background(), f.cache, "ai:suggestion:AAPL")
	require.True(t, found)
	assert.Equal(t, "Buy AAPL", cached.Suggestion)
	assert.Equal(t, dto.PromptTypeFull, cached.PromptType)
}

func TestSuggest_RetriesOverloadWithBackoff(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(),
		aiResult{err: errOverloaded},
		aiResult{err: errOverloaded},
		aiResult{text: "Hold AAPL"},
	)

	resp, err := f.svc.Suggest(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Hold AAPL", resp.Suggestion)
	assert.Equal(t, dto.PromptTypeFull, resp.PromptType)
	assert.Equal(t, dto.DataSourceRealtime, resp.DataSource)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.sleeps)
	assert.Equal(t, 3, f.ai.calls())
}

func TestSuggest_OverloadExhaustedFallsBackToBasic(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(appleRecord()),
		aiResult{err: errOverloaded},
		aiResult{err: errOverloaded},
		aiResult{err: errOverloaded},
		aiResult{text: "Basic view"},
	)

	resp, err := f.svc.Suggest(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Basic view", resp.Suggestion)
	assert.Equal(t, dto.PromptTypeBasic, resp.PromptType)
	assert.Equal(t, dto.DataSourceDatabase, resp.DataSource)
	assert.Equal(t, dto.NoteDatabaseFallback, resp.Note)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.sleeps)
	require.Equal(t, 4, f.ai.calls())
	assert.Contains(t, f.ai.prompts[3], "Snapshot")
}

func TestSuggest_BasicOverloadUsesFallbackPrompt(t *testing.T) {
	market := &fakeMarketRepo{err: errors.New("alpha vantage error: rate limited")}
	f := newSuggestionFixture(market, newFakeStockRepo(appleRecord()),
		aiResult{err: errOverloaded},
		aiResult{text: "Short view"},
	)

	resp, err := f.svc.Suggest(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Short view", resp.Suggestion)
	assert.Equal(t, dto.PromptTypeFallback, resp.PromptType)
	assert.Equal(t, dto.DataSourceDatabase, resp.DataSource)
	assert.Equal(t, dto.NoteHighLoad, resp.Note)
	require.Equal(t, 2, f.ai.calls())
	assert.Contains(t, f.ai.prompts[0], "Snapshot")
	assert.Contains(t, f.ai.prompts[1], "3-sentence")
	assert.Empty(t, f.sleeps)
}

func TestSuggest_IncompleteMarketDataGoesToDatabase(t *testing.T) {
	market := completeMarket()
	market.quote = &dto.AlphaVantageGlobalQuote{}
	f := newSuggestionFixture(market, newFakeStockRepo(appleRecord()), aiResult{text: "Basic view"})

	resp, err := f.svc.Suggest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, dto.PromptTypeBasic, resp.PromptType)
	assert.Equal(t, 1, f.ai.calls())
}

func TestSuggest_NonOverloadErrorAborts(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(appleRecord()), aiResult{err: errBadRequest})

	_, err := f.svc.Suggest(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 1, f.ai.calls())
	assert.Empty(t, f.sleeps)

	_, found := f.cache.Get(context.Background(), "ai:suggestion:AAPL")
	assert.False(t, found)
}

func TestSuggest_NoRecordAndGatewayDown(t *testing.T) {
	market := &fakeMarketRepo{err: errors.New("alpha vantage error: timeout")}
	f := newSuggestionFixture(market, newFakeStockRepo(), aiResult{text: "unused"})

	_, err := f.svc.Suggest(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, f.ai.calls())
}

func TestSuggest_FallbackFailureIsGenerationError(t *testing.T) {
	market := &fakeMarketRepo{err: errors.New("down")}
	f := newSuggestionFixture(market, newFakeStockRepo(appleRecord()), aiResult{err: errOverloaded})

	_, err := f.svc.Suggest(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 2, f.ai.calls())
}

func TestSuggest_DatabaseErrorIsReturned(t *testing.T) {
	market := &fakeMarketRepo{err: errors.New("down")}
	stocks := newFakeStockRepo()
	stocks.findErr = errors.New("connection refused")
	f := newSuggestionFixture(market, stocks, aiResult{text: "unused"})

	_, err := f.svc.Suggest(context.Background(), "AAPL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSuggest_CancelledDuringBackoff(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(appleRecord()), aiResult{err: errOverloaded})
	f.svc.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Suggest(ctx, "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.ai.calls())
}

func TestSuggest_CustomOverloadClassifier(t *testing.T) {
	f := newSuggestionFixture(completeMarket(), newFakeStockRepo(appleRecord()),
		aiResult{err: fmt.Errorf("resource exhausted")},
		aiResult{text: "ok"},
	)
	f.svc.isOverloaded = func(err error) bool { return err != nil }

	resp, err := f.svc.Suggest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, dto.PromptTypeFull, resp.PromptType)
	assert.Equal(t, []time.Duration{2 * time.Second}, f.sleeps)
}
