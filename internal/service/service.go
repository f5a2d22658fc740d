package service

import (
	"stockgenius/config"
	"stockgenius/internal/repository"
	"stockgenius/pkg/cache"
	"stockgenius/pkg/logger"
)

type Service struct {
	SuggestionService   SuggestionService
	StockService        StockService
	WatchlistService    WatchlistService
	StockRefreshService StockRefreshService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
) *Service {
	return &Service{
		SuggestionService:   NewSuggestionService(log, inmemoryCache, repo.MarketDataRepo, repo.StockRepo, repo.AIRepo),
		StockService:        NewStockService(log, inmemoryCache, repo.MarketDataRepo, repo.FinnhubRepo, repo.StockRepo),
		WatchlistService:    NewWatchlistService(log, repo.UserRepo, repo.UnitOfWork),
		StockRefreshService: NewStockRefreshService(cfg, log, repo.MarketDataRepo, repo.StockRepo),
	}
}
