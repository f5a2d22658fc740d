package dto

import (
	"stockgenius/internal/model"
)

type StockOHLCV struct {
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

type CandleResult struct {
	Symbol   string       `json:"symbol"`
	Interval string       `json:"interval"`
	Candles  []StockOHLCV `json:"candles"`
}

type PriceResult struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Change string  `json:"change"`
	Volume int64   `json:"volume"`
}

// LiveStockData is the cached live snapshot. Provider payloads are passed through as-is.
type LiveStockData struct {
	Symbol       string                  `json:"symbol"`
	Intraday     *AlphaVantageTimeSeries `json:"intraday"`
	SMA          *AlphaVantageIndicator  `json:"sma"`
	RSI          *AlphaVantageIndicator  `json:"rsi"`
	Fundamentals *AlphaVantageOverview   `json:"fundamentals"`
}

type ListStocksParam struct {
	Search   string
	Sector   string
	Industry string
	Pagination
}

type StockListResult struct {
	Total        int64         `json:"total"`
	TotalPages   int           `json:"totalPages"`
	CurrentPage  int           `json:"currentPage"`
	ItemsPerPage int           `json:"itemsPerPage"`
	Stocks       []model.Stock `json:"stocks"`
}

type RefreshSummary struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SeedStock is one entry of the stock metadata seed file.
type SeedStock struct {
	Symbol    string  `mapstructure:"symbol"`
	Name      string  `mapstructure:"name"`
	Sector    string  `mapstructure:"sector"`
	Industry  string  `mapstructure:"industry"`
	LogoURL   string  `mapstructure:"logo_url"`
	MarketCap float64 `mapstructure:"market_cap"`
	PERatio   float64 `mapstructure:"pe_ratio"`
}

type SeedSummary struct {
	Total    int
	Inserted int
	Existing int
}
