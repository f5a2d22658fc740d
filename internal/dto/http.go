package dto

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Tip     string `json:"tip,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StockListResponse struct {
	Success bool `json:"success"`
	StockListResult
}

type LiveStockResponse struct {
	Success   bool `json:"success"`
	FromCache bool `json:"fromCache"`
	LiveStockData
}

type CandleResponse struct {
	Success   bool `json:"success"`
	FromCache bool `json:"fromCache"`
	CandleResult
}

type PriceResponse struct {
	Success   bool `json:"success"`
	FromCache bool `json:"fromCache"`
	PriceResult
}

type WatchlistResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Watchlist []WatchlistItem `json:"watchlist"`
}

type CandleQuery struct {
	Interval string `query:"interval" validate:"omitempty,oneof=1min 5min 15min 1D"`
}

type ToggleWatchlistRequest struct {
	Symbol string `json:"symbol" validate:"required,max=16"`
	Name   string `json:"name" validate:"max=255"`
}
