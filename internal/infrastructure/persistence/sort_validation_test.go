package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"whitespace around ASC returns ASC", "  ASC  ", "ASC"},
		{"invalid value returns DESC", "sideways", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE products;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	b2c := ProductSortColumns["b2c"]
	b2b := ProductSortColumns["b2b"]

	assert.Equal(t, "b2c_price", ValidateSortField("price", b2c, "created_at"))
	assert.Equal(t, "b2b_price", ValidateSortField(" Price ", b2b, "created_at"))
	assert.Equal(t, "name", ValidateSortField("name", b2c, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", b2c, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("stock; --", b2c, "created_at"))
}
