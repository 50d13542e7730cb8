package persistence

import (
	"strings"

	"github.com/aurum/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applyListOptions applies whitelisted ordering and pagination to a list
// query. The whitelist keeps user-supplied sort fields out of raw SQL.
func applyListOptions(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// RawGoldLotSortFields contains allowed sort fields for raw gold lots
var RawGoldLotSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"karat":              true,
	"status":             true,
	"weight_received":    true,
	"weight_consumed":    true,
	"weight_wasted":      true,
	"weight_available":   true,
	"unit_cost_per_gram": true,
}

// ManufacturingRecordSortFields contains allowed sort fields for manufacturing records
var ManufacturingRecordSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"batch_number": true,
	"status":       true,
	"product_id":   true,
	"total_cost":   true,
	"completed_at": true,
}

// OwnershipRecordSortFields contains allowed sort fields for ownership records
var OwnershipRecordSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"stock_ref_kind":     true,
	"funding_source":     true,
	"total_weight":       true,
	"owned_weight":       true,
	"total_cost":         true,
	"outstanding_amount": true,
}

// TreasuryTransactionSortFields contains allowed sort fields for treasury transactions
var TreasuryTransactionSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"occurred_at": true,
	"amount":      true,
	"type":        true,
	"direction":   true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"current_balance": true,
}

// GoldRateSortFields contains allowed sort fields for gold rates
var GoldRateSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"karat":          true,
	"rate_per_gram":  true,
	"effective_from": true,
	"effective_to":   true,
}
