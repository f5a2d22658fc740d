package service

import (
	"context"
	"encoding/json"
	"fmt"
	"stockgenius/internal/dto"
	"stockgenius/internal/model"
	"stockgenius/internal/repository"
	"stockgenius/pkg/logger"
	"stockgenius/pkg/utils"
	"strings"

	"gorm.io/datatypes"
)

type WatchlistService interface {
	Get(ctx context.Context, userID uint) ([]dto.WatchlistItem, error)
	// Toggle removes symbol from the watchlist when present, otherwise appends it.
	Toggle(ctx context.Context, userID uint, symbol, name string) ([]dto.WatchlistItem, bool, error)
}

type watchlistService struct {
	log        *logger.Logger
	userRepo   repository.UserRepository
	unitOfWork repository.UnitOfWork
}

func NewWatchlistService(log *logger.Logger, userRepo repository.UserRepository, unitOfWork repository.UnitOfWork) WatchlistService {
	return &watchlistService{
		log:        log,
		userRepo:   userRepo,
		unitOfWork: unitOfWork,
	}
}

func (s *watchlistService) Get(ctx context.Context, userID uint) ([]dto.WatchlistItem, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return decodeWatchlist(user)
}

func (s *watchlistService) Toggle(ctx context.Context, userID uint, symbol, name string) ([]dto.WatchlistItem, bool, error) {
	symbol = utils.NormalizeSymbol(symbol)

	var (
		items []dto.WatchlistItem
		added bool
	)
	err := s.unitOfWork.Run(ctx, func(opts ...utils.DBOption) error {
		user, err := s.userRepo.FindByID(ctx, userID, append(opts, utils.WithLockForUpdate())...)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}

		current, err := decodeWatchlist(user)
		if err != nil {
			return err
		}

		items, added = toggleItem(current, dto.WatchlistItem{Symbol: symbol, Name: strings.TrimSpace(name)})

		raw, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to encode watchlist: %w", err)
		}
		return s.userRepo.UpdateWatchlist(ctx, userID, datatypes.JSON(raw), opts...)
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to toggle watchlist",
			logger.IntField("user_id", int(userID)),
			logger.StringField("symbol", symbol),
			logger.ErrorField(err),
		)
		return nil, false, err
	}

	s.log.InfoContext(ctx, "Watchlist updated",
		logger.IntField("user_id", int(userID)),
		logger.StringField("symbol", symbol),
		logger.BoolField("added", added),
	)
	return items, added, nil
}

func toggleItem(items []dto.WatchlistItem, item dto.WatchlistItem) ([]dto.WatchlistItem, bool) {
	result := make([]dto.WatchlistItem, 0, len(items)+1)
	removed := false
	for _, existing := range items {
		if strings.EqualFold(existing.Symbol, item.Symbol) {
			removed = true
			continue
		}
		result = append(result, existing)
	}
	if removed {
		return result, false
	}
	return append(result, item), true
}

func decodeWatchlist(user *model.User) ([]dto.WatchlistItem, error) {
	items := make([]dto.WatchlistItem, 0)
	if len(user.Watchlist) == 0 || string(user.Watchlist) == "null" {
		return items, nil
	}
	if err := json.Unmarshal(user.Watchlist, &items); err != nil {
		return nil, fmt.Errorf("failed to decode watchlist: %w", err)
	}
	return items, nil
}
