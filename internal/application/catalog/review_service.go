package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/catalog"
	"github.com/sevenext/backend/internal/domain/shared"
)

// ReviewService records and lists product reviews
type ReviewService struct {
	productRepo catalog.ProductRepository
	reviewRepo  catalog.ReviewRepository
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(productRepo catalog.ProductRepository, reviewRepo catalog.ReviewRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{productRepo: productRepo, reviewRepo: reviewRepo, logger: logger}
}

// Create adds the user's single review of a product and returns the new aggregate
func (s *ReviewService) Create(ctx context.Context, productID, userID uuid.UUID, input CreateReviewInput) (*ReviewSummary, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForUser(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, catalog.ErrAlreadyReviewed
	}

	review, err := catalog.NewReview(productID, userID, input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}
	// a concurrent duplicate still fails on the unique index
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	stats, err := s.reviewRepo.StatsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Review created",
		zap.String("product_id", productID.String()),
		zap.String("user_id", userID.String()),
		zap.String("rating", input.Rating.String()))
	summary := toReviewSummary(stats)
	return &summary, nil
}

// List returns a page of reviews, newest first, with the product's average
func (s *ReviewService) List(ctx context.Context, productID uuid.UUID, page shared.Page) (*ReviewListResponse, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	page = page.Normalize(shared.DefaultPageLimit)

	reviews, err := s.reviewRepo.FindByProduct(ctx, productID, page)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviewRepo.StatsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	items := lo.Map(reviews, func(r catalog.ReviewWithAuthor, _ int) ReviewResponse { return toReviewResponse(r) })
	return &ReviewListResponse{
		Paginated:     shared.NewPaginated(items, stats.Count, page),
		AverageRating: stats.Rounded().AverageRating,
	}, nil
}

func (s *ReviewService) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	exists, err := s.productRepo.ExistsByID(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.ErrProductNotFound
	}
	return nil
}
