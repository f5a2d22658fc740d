package dto

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far from int overflow.
	MaxPage      = 1_000_000
)

type Pagination struct {
	Page  int
	Limit int
}

// NewPagination parses raw query values. Non-numeric input falls back to the defaults and
// numeric input is clamped: 1 <= page <= MaxPage, 1 <= limit <= MaxLimit.
func NewPagination(pageRaw, limitRaw string) Pagination {
	page, err := strconv.Atoi(strings.TrimSpace(pageRaw))
	if err != nil {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(strings.TrimSpace(limitRaw))
	if err != nil {
		limit = DefaultLimit
	}

	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.Limit)))
}
