package repository

import (
	"context"
	"errors"
	"stockgenius/internal/model"
	"stockgenius/pkg/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error)
	UpdateWatchlist(ctx context.Context, id uint, watchlist datatypes.JSON, opts ...utils.DBOption) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

// FindByID returns nil, nil when the user does not exist.
func (r *userRepository) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) UpdateWatchlist(ctx context.Context, id uint, watchlist datatypes.JSON, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.User{}).Where("id = ?", id).Update("watchlist", watchlist).Error
}
