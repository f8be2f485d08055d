package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	Category  string
	Status    ProductStatus
	Audience  pricing.Audience
	MinPrice  *decimal.Decimal // on the audience tier base price
	MaxPrice  *decimal.Decimal
	SortBy    string // created_at, name or price; price follows the audience tier
	SortOrder string
	Page      shared.Page
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// ExistsByID checks whether a product exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// FindAll finds products matching the filter, newest first unless SortBy says otherwise
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// FindNewArrivals finds the newest published products
	FindNewArrivals(ctx context.Context, limit int) ([]Product, error)

	// FindOnSale finds published products whose audience offer is active at now,
	// ordered by absolute saving descending
	FindOnSale(ctx context.Context, audience pricing.Audience, now time.Time, limit int) ([]Product, error)

	// Search finds published products by name, category or description,
	// ranking name matches first, then category, then newest
	Search(ctx context.Context, query string, limit int) ([]Product, error)
}
