package prompt

import (
	"strings"
	"testing"

	"stockgenius/internal/dto"
	"stockgenius/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestRSIInterpretation(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "oversold", value: "22.5", want: RSIOversold},
		{name: "zero is oversold", value: "0", want: RSIOversold},
		{name: "lower bound is neutral", value: "30", want: RSINeutral},
		{name: "neutral", value: "55.1", want: RSINeutral},
		{name: "upper bound is neutral", value: "70", want: RSINeutral},
		{name: "overbought", value: "71.0", want: RSIOverbought},
		{name: "missing", value: "", want: dto.NotAvailable},
		{name: "not available", value: dto.NotAvailable, want: dto.NotAvailable},
		{name: "nan", value: "NaN", want: dto.NotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RSIInterpretation(tt.value))
		})
	}
}

func TestFull(t *testing.T) {
	info := dto.StockInfo{
		Symbol:        "AAPL",
		Name:          "Apple Inc",
		Sector:        "TECHNOLOGY",
		Industry:      "ELECTRONIC COMPUTERS",
		Price:         "185.20",
		ChangePercent: "0.54%",
		MarketCap:     "2900000000000",
		PERatio:       "29.1",
		SMA:           "180.12",
		RSI:           "75.3",
	}

	got := Full(info)

	assert.Contains(t, got, "**Current Status**: AAPL, 185.20, (0.54%)")
	assert.Contains(t, got, "- Sector/Industry: TECHNOLOGY/ELECTRONIC COMPUTERS")
	assert.Contains(t, got, "- P/E: 29.1")
	assert.Contains(t, got, "- RSI: 75.3 (Overbought)")
	assert.Contains(t, got, "- SMA: 180.12 vs Price")
	assert.Contains(t, got, "last 30 days of daily data")
	assert.Contains(t, got, "Fibonacci")
}

func TestFull_MissingIndicators(t *testing.T) {
	info := dto.NewStockInfo("MSFT", nil, nil, nil, nil)

	got := Full(info)

	assert.Contains(t, got, "- RSI: N/A (N/A)")
	assert.Contains(t, got, "- SMA: N/A vs Price")
	assert.Contains(t, got, "**Current Status**: MSFT, N/A, (N/A)")
}

func TestBasicAndFallback(t *testing.T) {
	f := dto.FundamentalsFromStock(model.Stock{
		Symbol:    "IBM",
		Name:      "International Business Machines",
		Sector:    "TECHNOLOGY",
		MarketCap: 150000000000,
		PERatio:   22.4,
	})

	basic := Basic(f)
	assert.Contains(t, basic, "International Business Machines (IBM)")
	assert.Contains(t, basic, "**Current Status**: N/A")
	assert.Contains(t, basic, "- Sector: TECHNOLOGY")
	assert.Contains(t, basic, "- P/E: 22.4")
	assert.Contains(t, basic, "- Market Cap: 150000000000")
	assert.Contains(t, basic, "under 150 words")

	fallback := Fallback(f)
	assert.True(t, strings.HasPrefix(fallback, "Provide a 3-sentence analysis of International Business Machines (IBM)"))
	assert.Contains(t, fallback, "1. Current status")
	assert.Contains(t, fallback, "2. Recommendation")
	assert.Contains(t, fallback, "3. Key consideration")
	assert.Less(t, len(fallback), len(basic))
}
