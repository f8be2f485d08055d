package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sevenext/backend/internal/domain/catalog"
	"github.com/sevenext/backend/internal/domain/shared"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

type reviewStatsRow struct {
	ProductID     uuid.UUID
	Count         int64
	AverageRating decimal.Decimal
}

// Create inserts a review
func (r *GormReviewRepository) Create(ctx context.Context, review *catalog.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalog.ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

// ExistsForUser checks whether the user already reviewed the product
func (r *GormReviewRepository) ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	return count > 0, err
}

// FindByProduct lists a product's reviews with author details, newest first.
// Reviews of deleted users are kept and come back without author fields.
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, page shared.Page) ([]catalog.ReviewWithAuthor, error) {
	page = page.Normalize(shared.DefaultPageLimit)
	var rows []catalog.ReviewWithAuthor
	err := r.db.WithContext(ctx).
		Table("product_reviews").
		Select("product_reviews.*, COALESCE(users.email, '') AS author_email, COALESCE(users.full_name, '') AS author_full_name").
		Joins("LEFT JOIN users ON users.id = product_reviews.user_id").
		Where("product_reviews.product_id = ?", productID).
		Order("product_reviews.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(&rows).Error
	return rows, err
}

// StatsForProduct returns count and average rating of one product
func (r *GormReviewRepository) StatsForProduct(ctx context.Context, productID uuid.UUID) (catalog.ReviewStats, error) {
	stats, err := r.StatsForProducts(ctx, []uuid.UUID{productID})
	if err != nil {
		return catalog.ReviewStats{}, err
	}
	if s, ok := stats[productID]; ok {
		return s, nil
	}
	return catalog.ReviewStats{ProductID: productID, AverageRating: decimal.Zero}, nil
}

// StatsForProducts aggregates reviews for several products in one grouped query
func (r *GormReviewRepository) StatsForProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]catalog.ReviewStats, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]catalog.ReviewStats{}, nil
	}

	var rows []reviewStatsRow
	err := r.db.WithContext(ctx).
		Model(&catalog.Review{}).
		Select("product_id, COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average_rating").
		Where("product_id IN ?", lo.Uniq(productIDs)).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.SliceToMap(rows, func(row reviewStatsRow) (uuid.UUID, catalog.ReviewStats) {
		return row.ProductID, catalog.ReviewStats{
			ProductID:     row.ProductID,
			Count:         row.Count,
			AverageRating: row.AverageRating,
		}
	}), nil
}

var _ catalog.ReviewRepository = (*GormReviewRepository)(nil)
