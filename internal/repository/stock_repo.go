package repository

import (
	"context"
	"errors"
	"stockgenius/internal/dto"
	"stockgenius/internal/model"
	"stockgenius/pkg/utils"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	FindBySymbol(ctx context.Context, symbol string, opts ...utils.DBOption) (*model.Stock, error)
	CreateIfNotExists(ctx context.Context, stock *model.Stock, opts ...utils.DBOption) (bool, error)
	List(ctx context.Context, param dto.ListStocksParam) ([]model.Stock, int64, error)
	FindAll(ctx context.Context) ([]model.Stock, error)
	UpdateFundamentals(ctx context.Context, id uint, update dto.FundamentalsUpdate, opts ...utils.DBOption) error
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{
		db: db,
	}
}

// FindBySymbol returns nil, nil when no record exists.
func (r *stockRepository) FindBySymbol(ctx context.Context, symbol string, opts ...utils.DBOption) (*model.Stock, error) {
	var stock model.Stock
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Where("symbol = ?", strings.ToUpper(symbol)).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &stock, nil
}

// CreateIfNotExists inserts the record unless the symbol is already taken. Losing a
// concurrent insert race is reported as created=false, not as an error.
func (r *stockRepository) CreateIfNotExists(ctx context.Context, stock *model.Stock, opts ...utils.DBOption) (bool, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoNothing: true,
	}).Create(stock)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *stockRepository) List(ctx context.Context, param dto.ListStocksParam) ([]model.Stock, int64, error) {
	var (
		stocks []model.Stock
		total  int64
	)

	where, args := stockListFilter(param)

	query := r.db.WithContext(ctx).Model(&model.Stock{})
	if where != "" {
		query = query.Where(where, args...)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("symbol ASC").
		Offset(param.Offset()).
		Limit(param.Limit).
		Find(&stocks).Error; err != nil {
		return nil, 0, err
	}

	return stocks, total, nil
}

// stockListFilter builds the WHERE clause for List. User text is matched literally, so
// LIKE wildcards in it are escaped.
func stockListFilter(param dto.ListStocksParam) (string, []interface{}) {
	qFilter := []string{}
	qFilterParam := []interface{}{}

	if search := strings.TrimSpace(param.Search); search != "" {
		like := "%" + utils.EscapeLike(strings.ToLower(search)) + "%"
		qFilter = append(qFilter, `(LOWER(symbol) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`)
		qFilterParam = append(qFilterParam, like, like)
	}

	if sector := strings.TrimSpace(param.Sector); sector != "" {
		qFilter = append(qFilter, "LOWER(sector) = ?")
		qFilterParam = append(qFilterParam, strings.ToLower(sector))
	}

	if industry := strings.TrimSpace(param.Industry); industry != "" {
		qFilter = append(qFilter, `LOWER(industry) LIKE ? ESCAPE '\'`)
		qFilterParam = append(qFilterParam, "%"+utils.EscapeLike(strings.ToLower(industry))+"%")
	}

	return strings.Join(qFilter, " AND "), qFilterParam
}

func (r *stockRepository) FindAll(ctx context.Context) ([]model.Stock, error) {
	var stocks []model.Stock
	if err := r.db.WithContext(ctx).Order("symbol ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// UpdateFundamentals writes only the fields present in update.
func (r *stockRepository) UpdateFundamentals(ctx context.Context, id uint, update dto.FundamentalsUpdate, opts ...utils.DBOption) error {
	columns := fundamentalsColumns(update)
	if len(columns) == 0 {
		return nil
	}
	columns["updated_at"] = gorm.Expr("NOW()")

	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Stock{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func fundamentalsColumns(update dto.FundamentalsUpdate) map[string]interface{} {
	columns := map[string]interface{}{}
	if update.Name != "" {
		columns["name"] = update.Name
	}
	if update.Sector != "" {
		columns["sector"] = update.Sector
	}
	if update.Industry != "" {
		columns["industry"] = update.Industry
	}
	if update.MarketCap != nil {
		columns["market_cap"] = *update.MarketCap
	}
	if update.PERatio != nil {
		columns["pe_ratio"] = *update.PERatio
	}
	return columns
}
