package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/catalog"
	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

// ProductListInput narrows a product listing
type ProductListInput struct {
	Category  string
	Status    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
	Audience  pricing.Audience
}

func (in ProductListInput) filter() catalog.ProductFilter {
	return catalog.ProductFilter{
		Category:  in.Category,
		Status:    catalog.ProductStatus(in.Status),
		Audience:  in.Audience,
		MinPrice:  in.MinPrice,
		MaxPrice:  in.MaxPrice,
		SortBy:    in.SortBy,
		SortOrder: in.SortOrder,
		Page:      shared.Page{Limit: in.Limit, Offset: in.Offset}.Normalize(shared.DefaultPageLimit),
	}
}

// ProductResponse is a product priced for one audience
type ProductResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Status      catalog.ProductStatus `json:"status"`
	Stock       int                   `json:"stock"`
	Image       string                `json:"image"`
	pricing.EffectivePrice
	UserType     pricing.Audience `json:"user_type"`
	Rating       decimal.Decimal  `json:"rating"`
	ReviewsCount int64            `json:"reviews_count"`
	CreatedAt    time.Time        `json:"created_at"`
}

func toProductResponse(p *catalog.Product, audience pricing.Audience, now time.Time, stats catalog.ReviewStats) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Description:    p.Description,
		Status:         p.Status,
		Stock:          p.Stock,
		Image:          p.Image,
		EffectivePrice: p.EffectivePrice(audience, now),
		UserType:       audience,
		Rating:         stats.Rounded().AverageRating,
		ReviewsCount:   stats.Count,
		CreatedAt:      p.CreatedAt,
	}
}

// CreateReviewInput is a new review
type CreateReviewInput struct {
	Rating  decimal.Decimal
	Comment string
}

// ReviewSummary is the rating aggregate of a product
type ReviewSummary struct {
	ProductID     uuid.UUID       `json:"product_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
	ReviewsCount  int64           `json:"reviews_count"`
}

func toReviewSummary(stats catalog.ReviewStats) ReviewSummary {
	stats = stats.Rounded()
	return ReviewSummary{
		ProductID:     stats.ProductID,
		AverageRating: stats.AverageRating,
		ReviewsCount:  stats.Count,
	}
}

// ReviewResponse is one review with its author's public details
type ReviewResponse struct {
	ID            uuid.UUID       `json:"id"`
	Rating        decimal.Decimal `json:"rating"`
	Comment       string          `json:"comment"`
	ReviewerName  string          `json:"reviewer_name"`
	ReviewerEmail string          `json:"reviewer_email,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// anonymousReviewer names reviews whose author deleted the account
const anonymousReviewer = "Anonymous"

func toReviewResponse(r catalog.ReviewWithAuthor) ReviewResponse {
	name := r.AuthorFullName
	if name == "" && r.AuthorEmail != "" {
		name, _, _ = strings.Cut(r.AuthorEmail, "@")
	}
	if name == "" {
		name = anonymousReviewer
	}
	return ReviewResponse{
		ID:            r.ID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		ReviewerName:  name,
		ReviewerEmail: r.AuthorEmail,
		CreatedAt:     r.CreatedAt,
	}
}

// ReviewListResponse is a page of reviews with the product's aggregate
type ReviewListResponse struct {
	shared.Paginated[ReviewResponse]
	AverageRating decimal.Decimal `json:"average_rating"`
}
