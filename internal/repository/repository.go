package repository

import (
	"stockgenius/config"
	"stockgenius/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	MarketDataRepo MarketDataRepository
	FinnhubRepo    FinnhubRepository
	AIRepo         AIRepository
	StockRepo      StockRepository
	UserRepo       UserRepository
	UnitOfWork     UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	aiRepo, err := NewGeminiAIRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		MarketDataRepo: NewAlphaVantageRepository(cfg, log),
		FinnhubRepo:    NewFinnhubRepository(cfg, log),
		AIRepo:         aiRepo,
		StockRepo:      NewStockRepository(db),
		UserRepo:       NewUserRepository(db),
		UnitOfWork:     NewUnitOfWork(db),
	}, nil
}
