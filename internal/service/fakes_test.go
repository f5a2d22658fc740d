package service

import (
	"context"
	"errors"
	"stockgenius/internal/dto"
	"stockgenius/internal/model"
	"stockgenius/pkg/utils"
	"sync"
	"sync/atomic"

	"gorm.io/datatypes"
)

type fakeMarketRepo struct {
	intraday *dto.AlphaVantageTimeSeries
	daily    *dto.AlphaVantageTimeSeries
	sma      *dto.AlphaVantageIndicator
	rsi      *dto.AlphaVantageIndicator
	overview *dto.AlphaVantageOverview
	quote    *dto.AlphaVantageGlobalQuote
	search   *dto.AlphaVantageSearchResult
	err      error

	calls          atomic.Int64
	intradayCalls  atomic.Int64
	dailyCalls     atomic.Int64
	lastIntervalMu sync.Mutex
	lastInterval   string
}

func (f *fakeMarketRepo) GetIntraday(_ context.Context, _ string, interval string) (*dto.AlphaVantageTimeSeries, error) {
	f.calls.Add(1)
	f.intradayCalls.Add(1)
	f.lastIntervalMu.Lock()
	f.lastInterval = interval
	f.lastIntervalMu.Unlock()
	return f.intraday, f.err
}

func (f *fakeMarketRepo) GetDaily(context.Context, string) (*dto.AlphaVantageTimeSeries, error) {
	f.calls.Add(1)
	f.dailyCalls.Add(1)
	return f.daily, f.err
}

func (f *fakeMarketRepo) GetSMA(context.Context, string, int) (*dto.AlphaVantageIndicator, error) {
	f.calls.Add(1)
	return f.sma, f.err
}

func (f *fakeMarketRepo) GetRSI(context.Context, string, int) (*dto.AlphaVantageIndicator, error) {
	f.calls.Add(1)
	return f.rsi, f.err
}

func (f *fakeMarketRepo) GetOverview(context.Context, string) (*dto.AlphaVantageOverview, error) {
	f.calls.Add(1)
	return f.overview, f.err
}

func (f *fakeMarketRepo) GetGlobalQuote(context.Context, string) (*dto.AlphaVantageGlobalQuote, error) {
	f.calls.Add(1)
	return f.quote, f.err
}

func (f *fakeMarketRepo) SearchSymbol(context.Context, string) (*dto.AlphaVantageSearchResult, error) {
	f.calls.Add(1)
	return f.search, f.err
}

type aiResult struct {
	text string
	err  error
}

// fakeAIRepo replays results in order and repeats the last one when exhausted.
type fakeAIRepo struct {
	mu      sync.Mutex
	results []aiResult
	prompts []string
}

func (f *fakeAIRepo) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if len(f.results) == 0 {
		return "", errors.New("no result configured")
	}
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx].text, f.results[idx].err
}

func (f *fakeAIRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeStockRepo struct {
	mu        sync.Mutex
	stocks    map[string]model.Stock
	findErr   error
	createErr error
	created   []model.Stock
	updated   map[uint]dto.FundamentalsUpdate
	listArg   dto.ListStocksParam
	listTotal int64
}

func newFakeStockRepo(stocks ...model.Stock) *fakeStockRepo {
	f := &fakeStockRepo{stocks: map[string]model.Stock{}}
	for _, s := range stocks {
		f.stocks[s.Symbol] = s
	}
	return f
}

func (f *fakeStockRepo) FindBySymbol(_ context.Context, symbol string, _ ...utils.DBOption) (*model.Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.stocks[symbol]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStockRepo) CreateIfNotExists(_ context.Context, stock *model.Stock, _ ...utils.DBOption) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return false, f.createErr
	}
	if _, ok := f.stocks[stock.Symbol]; ok {
		return false, nil
	}
	f.stocks[stock.Symbol] = *stock
	f.created = append(f.created, *stock)
	return true, nil
}

func (f *fakeStockRepo) List(_ context.Context, param dto.ListStocksParam) ([]model.Stock, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listArg = param
	stocks := make([]model.Stock, 0, len(f.stocks))
	for _, s := range f.stocks {
		stocks = append(stocks, s)
	}
	return stocks, f.listTotal, nil
}

func (f *fakeStockRepo) FindAll(context.Context) ([]model.Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stocks := make([]model.Stock, 0, len(f.stocks))
	for _, s := range f.stocks {
		stocks = append(stocks, s)
	}
	return stocks, nil
}

func (f *fakeStockRepo) UpdateFundamentals(_ context.Context, id uint, update dto.FundamentalsUpdate, _ ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[uint]dto.FundamentalsUpdate{}
	}
	f.updated[id] = update
	return nil
}

type fakeUserRepo struct {
	users map[uint]*model.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint, _ ...utils.DBOption) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateWatchlist(_ context.Context, id uint, watchlist datatypes.JSON, _ ...utils.DBOption) error {
	if u, ok := f.users[id]; ok {
		u.Watchlist = watchlist
	}
	return nil
}

type fakeUnitOfWork struct {
	runs int
}

func (f *fakeUnitOfWork) Run(_ context.Context, fn func(opts ...utils.DBOption) error) error {
	f.runs++
	return fn()
}

type fakeFinnhubRepo struct {
	enabled bool
	profile *dto.FinnhubCompanyProfile
	err     error
	calls   int
}

func (f *fakeFinnhubRepo) Enabled() bool { return f.enabled }

func (f *fakeFinnhubRepo) GetCompanyProfile(context.Context, string) (*dto.FinnhubCompanyProfile, error) {
	f.calls++
	return f.profile, f.err
}
