package repository

import (
	"stockgenius/internal/dto"
	"stockgenius/pkg/utils"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockListFilter(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := stockListFilter(dto.ListStocksParam{})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("wildcards in user text are literal", func(t *testing.T) {
		where, args := stockListFilter(dto.ListStocksParam{Search: " _ ", Industry: "100%"})
		assert.Equal(t, `(LOWER(symbol) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\') AND LOWER(industry) LIKE ? ESCAPE '\'`, where)
		assert.Equal(t, []interface{}{`%\_%`, `%\_%`, `%100\%%`}, args)
	})

	t.Run("sector is exact and case-insensitive", func(t *testing.T) {
		where, args := stockListFilter(dto.ListStocksParam{Sector: "Technology"})
		assert.Equal(t, "LOWER(sector) = ?", where)
		assert.Equal(t, []interface{}{"technology"}, args)
	})
}

func TestFundamentalsColumns(t *testing.T) {
	assert.Empty(t, fundamentalsColumns(dto.FundamentalsUpdate{}))

	columns := fundamentalsColumns(dto.FundamentalsUpdate{
		Name:    "Apple Inc",
		PERatio: utils.ToPointer(33.5),
	})
	assert.Equal(t, map[string]interface{}{"name": "Apple Inc", "pe_ratio": 33.5}, columns)
}
