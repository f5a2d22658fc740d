package service

import (
	"context"
	"errors"
	"fmt"
	"stockgenius/internal/dto"
	"stockgenius/internal/model"
	"stockgenius/internal/repository"
	"stockgenius/pkg/logger"
	"stockgenius/pkg/utils"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalidSeed = errors.New("invalid stock seed")

// StockSeedService loads stock metadata so listing and the database fallback work on a fresh install.
type StockSeedService interface {
	// Seed inserts every entry whose symbol is not stored yet. Existing records are left untouched.
	Seed(ctx context.Context, stocks []dto.SeedStock) (dto.SeedSummary, error)
}

type stockSeedService struct {
	log       *logger.Logger
	stockRepo repository.StockRepository
}

func NewStockSeedService(log *logger.Logger, stockRepo repository.StockRepository) StockSeedService {
	return &stockSeedService{
		log:       log,
		stockRepo: stockRepo,
	}
}

// LoadStockSeed reads the "stocks" list from a YAML or JSON file; the format follows the extension.
func LoadStockSeed(path string) ([]dto.SeedStock, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var stocks []dto.SeedStock
	if err := v.UnmarshalKey("stocks", &stocks); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}
	if len(stocks) == 0 {
		return nil, fmt.Errorf("%w: %s has no stocks", ErrInvalidSeed, path)
	}

	for i := range stocks {
		stocks[i].Symbol = utils.NormalizeSymbol(stocks[i].Symbol)
		if stocks[i].Symbol == "" {
			return nil, fmt.Errorf("%w: entry %d has no symbol", ErrInvalidSeed, i+1)
		}
	}
	return stocks, nil
}

func (s *stockSeedService) Seed(ctx context.Context, stocks []dto.SeedStock) (dto.SeedSummary, error) {
	summary := dto.SeedSummary{Total: len(stocks)}

	for _, entry := range stocks {
		record := model.Stock{
			Symbol:    utils.NormalizeSymbol(entry.Symbol),
			Name:      strings.TrimSpace(entry.Name),
			Sector:    strings.TrimSpace(entry.Sector),
			Industry:  strings.TrimSpace(entry.Industry),
			MarketCap: entry.MarketCap,
			PERatio:   entry.PERatio,
		}
		if record.Symbol == "" {
			return summary, fmt.Errorf("%w: empty symbol", ErrInvalidSeed)
		}
		if logo := strings.TrimSpace(entry.LogoURL); logo != "" {
			record.LogoURL = utils.ToPointer(logo)
		}

		created, err := s.stockRepo.CreateIfNotExists(ctx, &record)
		if err != nil {
			return summary, fmt.Errorf("failed to seed %s: %w", record.Symbol, err)
		}
		if created {
			summary.Inserted++
		} else {
			summary.Existing++
		}
	}

	s.log.InfoContext(ctx, "Stock seed completed",
		logger.IntField("total", summary.Total),
		logger.IntField("inserted", summary.Inserted),
		logger.IntField("existing", summary.Existing),
	)
	return summary, nil
}
