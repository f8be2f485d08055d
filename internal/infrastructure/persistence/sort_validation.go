package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns the column mapped to sortField, or defaultColumn when the
// field is empty or not whitelisted
func ValidateSortField(sortField string, allowed map[string]string, defaultColumn string) string {
	if column, ok := allowed[strings.ToLower(strings.TrimSpace(sortField))]; ok {
		return column
	}
	return defaultColumn
}

// ProductSortColumns maps public sort keys to columns for each price tier
var ProductSortColumns = map[string]map[string]string{
	"b2c": {"created_at": "created_at", "name": "name", "price": "b2c_price"},
	"b2b": {"created_at": "created_at", "name": "name", "price": "b2b_price"},
}
