// Package prompt renders the three analysis prompt tiers sent to the model.
// The functions are pure; choosing a tier is the caller's job.
package prompt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"stockgenius/internal/dto"
)

const (
	RSIOversold   = "Oversold"
	RSINeutral    = "Neutral"
	RSIOverbought = "Overbought"
)

// RSIInterpretation maps an RSI reading to its label: below 30 oversold, above 70 overbought.
func RSIInterpretation(value string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) {
		return dto.NotAvailable
	}
	switch {
	case v < 30:
		return RSIOversold
	case v > 70:
		return RSIOverbought
	default:
		return RSINeutral
	}
}

// Full renders the richest tier from live market data. Fibonacci levels are left for the
// model to compute from the last 30 days of daily highs and lows.
func Full(info dto.StockInfo) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"You are a stock market AI analyst specializing in concise, actionable insights. Provide a focused analysis for %s (%s) using this exact format:\n\n",
		info.Symbol, info.Name,
	))

	sb.WriteString("--- START ANALYSIS FORMAT ---\n\n")
	sb.WriteString(fmt.Sprintf("**Current Status**: %s, %s, (%s)\n\n", info.Symbol, info.Price, info.ChangePercent))

	sb.WriteString("1. 🔍 **Key Metrics**\n")
	sb.WriteString(fmt.Sprintf("- Sector/Industry: %s/%s\n", info.Sector, info.Industry))
	sb.WriteString(fmt.Sprintf("- P/E: %s\n", info.PERatio))
	sb.WriteString(fmt.Sprintf("- Market Cap: %s\n", info.MarketCap))
	sb.WriteString(fmt.Sprintf("- RSI: %s (%s)\n", info.RSI, RSIInterpretation(info.RSI)))
	sb.WriteString(fmt.Sprintf("- SMA: %s vs Price\n\n", info.SMA))

	sb.WriteString(`2. 📉 **Fibonacci Levels** (Based on recent high/low)
- 23.6%: [calculate from recent high/low]
- 38.2%: [calculate from recent high/low]
- 50%: [calculate from recent high/low]
- 61.8%: [calculate from recent high/low]

3. 🧠 **AI Recommendation**
[Buy/Hold/Sell] - [1-2 sentence rationale]

4. ⚠️ **Key Risk**
[Most significant current risk]

5. 📝 **Quick Tip**
[One actionable tip for investors]

--- END FORMAT ---

INSTRUCTIONS:
- Calculate Fibonacci levels using the highest and lowest prices from the last 30 days of daily data
- Keep each section extremely concise (1-2 lines max)
- Focus on actionable insights rather than lengthy explanations
- For RSI interpretation:
  - <30 = Oversold
  - 30-70 = Neutral
  - >70 = Overbought
`)

	return sb.String()
}

// Basic renders the tier used when only persisted fundamentals are available.
func Basic(f dto.Fundamentals) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Provide a concise analysis of %s (%s) using this format:\n\n", f.Name, f.Symbol))
	sb.WriteString("--- START ANALYSIS FORMAT ---\n\n")
	sb.WriteString(fmt.Sprintf("**Current Status**: %s\n\n", formatPrice(f.Price)))

	sb.WriteString("1. 🔍 **Snapshot**\n")
	sb.WriteString(fmt.Sprintf("- Sector: %s\n", f.Sector))
	sb.WriteString(fmt.Sprintf("- P/E: %s\n", formatNumber(f.PERatio)))
	sb.WriteString(fmt.Sprintf("- Market Cap: %s\n\n", formatNumber(f.MarketCap)))

	sb.WriteString(`2. 🧠 **Recommendation**
[Buy/Hold/Sell] - [Brief rationale]

3. ⚠️ **Watch Out For**
[Top risk factor]

4. 📝 **Quick Tip**
[One useful tip]

--- END FORMAT ---

Keep entire analysis under 150 words. Focus on what matters most to investors.
`)

	return sb.String()
}

// Fallback renders the minimal three-line request used when the model is overloaded.
func Fallback(f dto.Fundamentals) string {
	return fmt.Sprintf(`Provide a 3-sentence analysis of %s (%s):

1. Current status: [Price/trend]
2. Recommendation: [Buy/Hold/Sell]
3. Key consideration: [Main factor]
`, f.Name, f.Symbol)
}

func formatPrice(price *float64) string {
	if price == nil || *price <= 0 {
		return dto.NotAvailable
	}
	return strconv.FormatFloat(*price, 'f', 2, 64)
}

func formatNumber(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return dto.NotAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
