package handler

import (
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ListQuery carries the common pagination and ordering query parameters
type ListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
}

// toFilter converts the query parameters to a repository filter,
// applying pagination defaults
func (q ListQuery) toFilter() shared.Filter {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	return shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
		Filters:  make(map[string]interface{}),
	}
}

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// toDecimalPtr converts a float64 to a *decimal.Decimal
func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
