package dto

import "time"

// NotAvailable fills any prompt field the upstream data did not provide.
const NotAvailable = "N/A"

const (
	Interval1Min  = "1min"
	Interval5Min  = "5min"
	Interval15Min = "15min"
	Interval1Day  = "1D"

	DefaultCandleInterval   = Interval1Day
	DefaultIntradayInterval = Interval5Min
)

// SupportedCandleIntervals lists the intervals accepted by the candles endpoint.
func SupportedCandleIntervals() []string {
	return []string{Interval1Min, Interval5Min, Interval15Min, Interval1Day}
}

const (
	DefaultSMAPeriod = 20
	DefaultRSIPeriod = 14
)

const (
	KeyAISuggestion = "ai:suggestion:%s"
	KeyStockLive    = "stock:live:%s"
	KeyStockCandles = "stock:candles:%s:%s"
	KeyStockPrice   = "stock:price:%s"
)

const (
	TTLSuggestionRealtime = 300 * time.Second
	TTLSuggestionDatabase = 600 * time.Second
	TTLStockLive          = 300 * time.Second
	TTLCandlesIntraday    = 300 * time.Second
	TTLCandlesDaily       = 3600 * time.Second
	TTLStockPrice         = 300 * time.Second
)
