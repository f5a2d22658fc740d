package dto

import (
	"math"
	"strconv"
	"strings"

	"stockgenius/internal/model"
)

// StockInfo is the data behind a full-analysis prompt. Every field is text so that
// missing upstream values can be rendered as NotAvailable; defaults live in NewStockInfo only.
type StockInfo struct {
	Symbol        string
	Name          string
	Sector        string
	Industry      string
	Price         string
	ChangePercent string
	MarketCap     string
	PERatio       string
	SMA           string
	RSI           string
}

// NewStockInfo assembles a StockInfo from whatever the gateway returned. Any argument may be nil.
func NewStockInfo(symbol string, overview *AlphaVantageOverview, quote *AlphaVantageGlobalQuote, sma, rsi *AlphaVantageIndicator) StockInfo {
	info := StockInfo{
		Symbol:        symbol,
		Name:          symbol,
		Sector:        NotAvailable,
		Industry:      NotAvailable,
		Price:         NotAvailable,
		ChangePercent: NotAvailable,
		MarketCap:     NotAvailable,
		PERatio:       NotAvailable,
		SMA:           NotAvailable,
		RSI:           NotAvailable,
	}

	if overview != nil {
		info.Name = orDefault(overview.Name, symbol)
		info.Sector = orDefault(overview.Sector, NotAvailable)
		info.Industry = orDefault(overview.Industry, NotAvailable)
		info.MarketCap = orDefault(overview.MarketCapitalization, NotAvailable)
		info.PERatio = orDefault(overview.PERatio, NotAvailable)
	}
	if quote != nil {
		info.Price = orDefault(quote.GlobalQuote.Price, NotAvailable)
		info.ChangePercent = orDefault(quote.GlobalQuote.ChangePercent, NotAvailable)
	}
	if v, ok := sma.Latest(); ok {
		info.SMA = orDefault(v, NotAvailable)
	}
	if v, ok := rsi.Latest(); ok {
		info.RSI = orDefault(v, NotAvailable)
	}
	return info
}

// Fundamentals is the reduced data set used by the basic and fallback prompts.
type Fundamentals struct {
	Symbol    string
	Name      string
	Sector    string
	Industry  string
	MarketCap float64
	PERatio   float64
	Price     *float64
}

func FundamentalsFromStock(stock model.Stock) Fundamentals {
	return Fundamentals{
		Symbol:    stock.Symbol,
		Name:      orDefault(stock.Name, stock.Symbol),
		Sector:    orDefault(stock.Sector, NotAvailable),
		Industry:  orDefault(stock.Industry, NotAvailable),
		MarketCap: stock.MarketCap,
		PERatio:   stock.PERatio,
	}
}

// StockFromOverview maps an overview payload onto a persisted record. Unparseable numbers become 0.
func StockFromOverview(symbol string, overview AlphaVantageOverview) model.Stock {
	return model.Stock{
		Symbol:    symbol,
		Name:      overview.Name,
		Sector:    overview.Sector,
		Industry:  overview.Industry,
		MarketCap: ParseFloat(overview.MarketCapitalization),
		PERatio:   ParseFloat(overview.PERatio),
	}
}

// FundamentalsUpdate carries the overview fields that parsed cleanly. Empty strings and nil
// numbers mean "keep the stored value".
type FundamentalsUpdate struct {
	Name      string
	Sector    string
	Industry  string
	MarketCap *float64
	PERatio   *float64
}

func FundamentalsUpdateFromOverview(overview AlphaVantageOverview) FundamentalsUpdate {
	update := FundamentalsUpdate{
		Name:     orDefault(overview.Name, ""),
		Sector:   orDefault(overview.Sector, ""),
		Industry: orDefault(overview.Industry, ""),
	}
	if v, ok := LookupFloat(overview.MarketCapitalization); ok {
		update.MarketCap = &v
	}
	if v, ok := LookupFloat(overview.PERatio); ok {
		update.PERatio = &v
	}
	return update
}

// ParseFloat parses provider text such as "185.20" or "0.54%". Anything else yields 0.
func ParseFloat(s string) float64 {
	v, _ := LookupFloat(s)
	return v
}

// LookupFloat is ParseFloat that reports whether s held a finite number.
func LookupFloat(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return def
	}
	return s
}
