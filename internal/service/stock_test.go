package service

import (
	"context"
	"errors"
	"stockgenius/internal/dto"
	"stockgenius/internal/model"
	"stockgenius/pkg/cache"
	"stockgenius/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStockService(market *fakeMarketRepo, finnhub *fakeFinnhubRepo, stocks *fakeStockRepo) (*stockService, cache.Cache) {
	c := cache.NewCache(time.Hour, time.Hour)
	return NewStockService(logger.NewNop(), c, market, finnhub, stocks).(*stockService), c
}

func TestStockService_List(t *testing.T) {
	stocks := newFakeStockRepo(appleRecord())
	stocks.listTotal = 25
	svc, _ := newTestStockService(&fakeMarketRepo{}, &fakeFinnhubRepo{}, stocks)

	param := dto.ListStocksParam{Sector: "technology", Pagination: dto.NewPagination("2", "10")}
	result, err := svc.List(context.Background(), param)
	require.NoError(t, err)

	assert.EqualValues(t, 25, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 2, result.CurrentPage)
	assert.Equal(t, 10, result.ItemsPerPage)
	assert.Equal(t, "technology", stocks.listArg.Sector)
	assert.Equal(t, 10, stocks.listArg.Offset())
}

func TestStockService_GetCandles(t *testing.T) {
	daily := &dto.AlphaVantageTimeSeries{
		MetaData: map[string]interface{}{"5. Time Zone": "US/Eastern"},
		Series: map[string]dto.AlphaVantageBar{
			"2025-03-14": {Open: "3", High: "3.5", Low: "2.5", Close: "3.2", Volume: "300"},
			"2025-03-12": {Open: "1", High: "1.5", Low: "0.5", Close: "1.2", Volume: "100"},
			"2025-03-13": {Open: "2", High: "2.5", Low: "1.5", Close: "2.2", Volume: "200"},
			"not-a-date": {Open: "9"},
		},
	}

	t.Run("daily bars sorted ascending and cached", func(t *testing.T) {
		market := &fakeMarketRepo{daily: daily}
		svc, _ := newTestStockService(market, &fakeFinnhubRepo{}, newFakeStockRepo())

		result, fromCache, err := svc.GetCandles(context.Background(), "aapl", "")
		require.NoError(t, err)
		assert.False(t, fromCache)
		assert.Equal(t, "AAPL", result.Symbol)
		assert.Equal(t, dto.Interval1Day, result.Interval)
		require.Len(t, result.Candles, 3)

		for i := 1; i < len(result.Candles); i++ {
			assert.Less(t, result.Candles[i-1].Timestamp, result.Candles[i].Timestamp)
		}
		assert.Equal(t, "2025-03-12", result.Candles[0].Date)
		assert.Equal(t, 1.2, result.Candles[0].Close)
		assert.EqualValues(t, 300, result.Candles[2].Volume)

		again, fromCache, err := svc.GetCandles(context.Background(), "AAPL", "1D")
		require.NoError(t, err)
		assert.True(t, fromCache)
		assert.Equal(t, result.Candles, again.Candles)
		assert.EqualValues(t, 1, market.dailyCalls.Load())
	})

	t.Run("intraday interval uses intraday series", func(t *testing.T) {
		market := &fakeMarketRepo{intraday: &dto.AlphaVantageTimeSeries{Series: map[string]dto.AlphaVantageBar{
			"2025-03-14 15:59:00": {Close: "2"},
			"2025-03-14 15:58:00": {Close: "1"},
		}}}
		svc, _ := newTestStockService(market, &fakeFinnhubRepo{}, newFakeStockRepo())

		result, _, err := svc.GetCandles(context.Background(), "AAPL", "1min")
		require.NoError(t, err)
		require.Len(t, result.Candles, 2)
		assert.Equal(t, 1.0, result.Candles[0].Close)
		assert.Equal(t, "1min", market.lastInterval)
		assert.Zero(t, market.dailyCalls.Load())
	})

	t.Run("unsupported interval", func(t *testing.T) {
		market := &fakeMarketRepo{}
		svc, _ := newTestStockService(market, &fakeFinnhubRepo{}, newFakeStockRepo())

		_, _, err := svc.GetCandles(context.Background(), "AAPL", "2h")
		assert.ErrorIs(t, err, ErrInvalidInterval)
		assert.Zero(t, market.calls.Load())
	})
}

func TestStockService_GetPrice(t *testing.T) {
	t.Run("quote is parsed and cached", func(t *testing.T) {
		market := &fakeMarketRepo{quote: &dto.AlphaVantageGlobalQuote{GlobalQuote: dto.AlphaVantageQuote{
			Symbol: "AAPL", Price: "211.0400", Volume: "48213000", ChangePercent: "1.2034%",
		}}}
		svc, _ := newTestStockService(market, &fakeFinnhubRepo{}, newFakeStockRepo())

		price, fromCache, err := svc.GetPrice(context.Background(), "aapl")
		require.NoError(t, err)
		assert.False(t, fromCache)
		assert.Equal(t, dto.PriceResult{Symbol: "AAPL", Price: 211.04, Change: "1.2034%", Volume: 48213000}, *price)

		_, fromCache, err = svc.GetPrice(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.True(t, fromCache)
		assert.EqualValues(t, 1, market.calls.Load())
	})

	t.Run("empty quote is not found", func(t *testing.T) {
		svc, _ := newTestStockService(&fakeMarketRepo{quote: &dto.AlphaVantageGlobalQuote{}}, &fakeFinnhubRepo{}, newFakeStockRepo())

		_, _, err := svc.GetPrice(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrSymbolNotFound)
	})
}

func TestStockService_GetLive(t *testing.T) {
	searchAAPL := &dto.AlphaVantageSearchResult{BestMatches: []dto.AlphaVantageSearchMatch{
		{Symbol: "AAPL", Name: "Apple Inc"},
		{Symbol: "AAPL.LON", Name: "Apple Inc"},
	}}

	t.Run("unknown symbol", func(t *testing.T) {
		market := completeMarket()
		market.search = &dto.AlphaVantageSearchResult{BestMatches: []dto.AlphaVantageSearchMatch{{Symbol: "AAPL.LON"}}}
		svc, _ := newTestStockService(market, &fakeFinnhubRepo{}, newFakeStockRepo())

		_, _, err := svc.GetLive(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrSymbolNotFound)
	})

	t.Run("first fetch stores record with logo", func(t *testing.T) {
		market := completeMarket()
		market.search = searchAAPL
		finnhub := &fakeFinnhubRepo{enabled: true, profile: &dto.FinnhubCompanyProfile{Logo: "https://static.example/aapl.png"}}
		stocks := newFakeStockRepo()
		svc, _ := newTestStockService(market, finnhub, stocks)

		data, fromCache, err := svc.GetLive(context.Background(), "aapl")
		require.NoError(t, err)
		assert.False(t, fromCache)
		assert.Equal(t, "AAPL", data.Symbol)
		assert.Equal(t, "Apple Inc", data.Fundamentals.Name)

		require.Len(t, stocks.created, 1)
		assert.Equal(t, "AAPL", stocks.created[0].Symbol)
		assert.Equal(t, "TECHNOLOGY", stocks.created[0].Sector)
		require.NotNil(t, stocks.created[0].LogoURL)
		assert.Equal(t, "https://static.example/aapl.png", *stocks.created[0].LogoURL)

		_, fromCache, err = svc.GetLive(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.True(t, fromCache)
		assert.Len(t, stocks.created, 1)
	})

	t.Run("existing record is left alone", func(t *testing.T) {
		market := completeMarket()
		market.search = searchAAPL
		finnhub := &fakeFinnhubRepo{enabled: true}
		stocks := newFakeStockRepo(appleRecord())
		svc, _ := newTestStockService(market, finnhub, stocks)

		_, _, err := svc.GetLive(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Empty(t, stocks.created)
		assert.Zero(t, finnhub.calls)
	})

	t.Run("database failure does not fail the request", func(t *testing.T) {
		market := completeMarket()
		market.search = searchAAPL
		stocks := newFakeStockRepo()
		stocks.createErr = errors.New("connection reset")
		svc, _ := newTestStockService(market, &fakeFinnhubRepo{}, stocks)

		data, _, err := svc.GetLive(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.NotNil(t, data.Intraday)
	})

	t.Run("overview without name skips insert", func(t *testing.T) {
		market := completeMarket()
		market.search = searchAAPL
		market.overview = &dto.AlphaVantageOverview{}
		stocks := newFakeStockRepo()
		svc, _ := newTestStockService(market, &fakeFinnhubRepo{}, stocks)

		_, _, err := svc.GetLive(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Empty(t, stocks.created)
	})
}

func TestToCandles_NilSeries(t *testing.T) {
	assert.Empty(t, toCandles(nil))
	assert.NotNil(t, toCandles(nil))
}

func TestStockFromOverviewOnRecord(t *testing.T) {
	stock := dto.StockFromOverview("AAPL", dto.AlphaVantageOverview{Name: "Apple Inc", MarketCapitalization: "3200000000000", PERatio: "None"})
	assert.Equal(t, model.Stock{Symbol: "AAPL", Name: "Apple Inc", MarketCap: 3.2e12}, stock)
}
