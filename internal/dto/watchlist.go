package dto

type WatchlistItem struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
