package persistence

import (
	"strings"

	"github.com/erp/stockcore/internal/domain/shared"
)

// ValidateSortOrder normalizes orderDir to ASC or DESC, falling back to
// defaultDir for anything else
func ValidateSortOrder(orderDir, defaultDir string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return defaultDir
}

// ValidateSortField returns sortField when it is whitelisted and defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY clause from a list filter. id is
// appended as a tie-breaker so pages are stable.
func orderClause(filter shared.Filter, allowedFields map[string]bool, defaultField, defaultDir string) string {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	dir := ValidateSortOrder(filter.OrderDir, defaultDir)
	if field == "id" {
		return "id " + dir
	}
	return field + " " + dir + ", id " + dir
}

// StockItemSortFields are the sortable stock item columns
var StockItemSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"code":              true,
	"name":              true,
	"kind":              true,
	"price":             true,
	"total_quantity":    true,
	"reserved_quantity": true,
}

// ShipmentSortFields are the sortable shipment columns
var ShipmentSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"destination": true,
	"recipient":   true,
	"shipped_at":  true,
}

// InventoryCountSortFields are the sortable inventory count columns
var InventoryCountSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"completed_at":  true,
	"reconciled_at": true,
}

// ProductionOrderSortFields are the sortable production order columns
var ProductionOrderSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
}
