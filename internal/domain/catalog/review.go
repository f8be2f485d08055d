package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/shared"
)

// Review errors
var (
	ErrInvalidRating   = shared.NewValidationError("INVALID_RATING", "Rating must be between 1 and 5")
	ErrAlreadyReviewed = shared.NewConflictError("ALREADY_REVIEWED", "You have already reviewed this product")
)

var (
	minRating = decimal.NewFromInt(1)
	maxRating = decimal.NewFromInt(5)
)

// Review is one shopper's rating of a product. A user reviews a product at most once.
type Review struct {
	shared.BaseEntity
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user,priority:1"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user,priority:2"`
	Rating    decimal.Decimal `gorm:"type:decimal(2,1);not null"`
	Comment   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "product_reviews"
}

// NewReview creates a review after validating the rating range
func NewReview(productID, userID uuid.UUID, rating decimal.Decimal, comment string) (*Review, error) {
	if rating.LessThan(minRating) || rating.GreaterThan(maxRating) {
		return nil, ErrInvalidRating
	}
	return &Review{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		UserID:     userID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}, nil
}

// ReviewStats aggregates the reviews of one product
type ReviewStats struct {
	ProductID     uuid.UUID
	Count         int64
	AverageRating decimal.Decimal
}

// Rounded returns the stats with the average rounded to 2 places
func (s ReviewStats) Rounded() ReviewStats {
	s.AverageRating = s.AverageRating.Round(2)
	return s
}

// ReviewWithAuthor is a review joined with its author's public fields
type ReviewWithAuthor struct {
	Review
	AuthorEmail    string
	AuthorFullName string
}

// ReviewRepository defines persistence for reviews
type ReviewRepository interface {
	// Create inserts a review; a duplicate (product, user) pair returns ErrAlreadyReviewed
	Create(ctx context.Context, review *Review) error

	// ExistsForUser checks whether the user already reviewed the product
	ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error)

	// FindByProduct lists reviews with author details, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, page shared.Page) ([]ReviewWithAuthor, error)

	// StatsForProduct returns count and average rating of one product
	StatsForProduct(ctx context.Context, productID uuid.UUID) (ReviewStats, error)

	// StatsForProducts returns stats keyed by product id in one query; products without reviews are absent
	StatsForProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]ReviewStats, error)
}
