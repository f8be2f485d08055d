package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevenext/backend/internal/domain/catalog"
	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ExistsByID checks whether a product exists
func (r *GormProductRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindAll finds products matching the filter and the total matching count
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tier := tierPrefix(filter.Audience)
	page := filter.Page.Normalize(shared.DefaultPageLimit)
	column := ValidateSortField(filter.SortBy, ProductSortColumns[tier], "created_at")
	order := "DESC"
	if filter.SortBy != "" {
		order = ValidateSortOrder(filter.SortOrder)
	}

	var products []catalog.Product
	err := r.filtered(ctx, filter).
		Order(fmt.Sprintf("%s %s", column, order)).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormProductRepository) filtered(ctx context.Context, filter catalog.ProductFilter) *gorm.DB {
	tier := tierPrefix(filter.Audience)
	query := r.db.WithContext(ctx).Model(&catalog.Product{})

	status := filter.Status
	if status == "" {
		status = catalog.ProductStatusPublished
	}
	query = query.Where("status = ?", status)

	if category := strings.TrimSpace(filter.Category); category != "" && !strings.EqualFold(category, "all") {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if filter.MinPrice != nil {
		query = query.Where(tier+"_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where(tier+"_price <= ?", *filter.MaxPrice)
	}
	return query
}

// FindNewArrivals finds the newest published products
func (r *GormProductRepository) FindNewArrivals(ctx context.Context, limit int) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", catalog.ProductStatusPublished).
		Order("created_at DESC").
		Limit(clampLimit(limit, 10)).
		Find(&products).Error
	return products, err
}

// FindOnSale finds published products with an active offer for audience at now, biggest saving first
func (r *GormProductRepository) FindOnSale(ctx context.Context, audience pricing.Audience, now time.Time, limit int) ([]catalog.Product, error) {
	tier := tierPrefix(audience)
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", catalog.ProductStatusPublished).
		Where(tier+"_active_offer = ?", true).
		Where(tier+"_offer_price > 0").
		Where("("+tier+"_offer_start_date IS NULL OR "+tier+"_offer_start_date <= ?)", now).
		Where("("+tier+"_offer_end_date IS NULL OR "+tier+"_offer_end_date >= ?)", now).
		Order(tier + "_price - " + tier + "_offer_price DESC").
		Order("created_at DESC").
		Limit(clampLimit(limit, 10)).
		Find(&products).Error
	return products, err
}

// Search finds published products whose name, category or description contains query
func (r *GormProductRepository) Search(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []catalog.Product{}, nil
	}
	pattern := "%" + escapeLike(term) + "%"

	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", catalog.ProductStatusPublished).
		Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN LOWER(name) LIKE ? THEN 0 WHEN LOWER(category) LIKE ? THEN 1 ELSE 2 END, created_at DESC",
			Vars:               []any{pattern, pattern},
			WithoutParentheses: true,
		}}).
		Limit(clampLimit(limit, 20)).
		Find(&products).Error
	return products, err
}

func tierPrefix(audience pricing.Audience) string {
	if audience == pricing.AudienceB2B {
		return "b2b"
	}
	return "b2c"
}

func clampLimit(limit, def int) int {
	return shared.Page{Limit: limit}.Normalize(def).Limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
