package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/catalog"
	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

// Section sizes when the caller gives no limit
const (
	defaultSectionLimit = 10
	defaultSearchLimit  = 20
)

// ProductService serves storefront listings, every one priced through the offer resolver
type ProductService struct {
	productRepo catalog.ProductRepository
	reviewRepo  catalog.ReviewRepository
	clock       func() time.Time
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, reviewRepo catalog.ReviewRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		clock:       time.Now,
		logger:      logger,
	}
}

// List returns a filtered page of products
func (s *ProductService) List(ctx context.Context, input ProductListInput) (*shared.Paginated[ProductResponse], error) {
	input.Audience = pricing.ParseAudience(string(input.Audience))
	filter := input.filter()

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	items, err := s.respond(ctx, products, input.Audience)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total, filter.Page)
	return &result, nil
}

// Get returns one published product
func (s *ProductService) Get(ctx context.Context, id uuid.UUID, audience pricing.Audience) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsPublished() {
		return nil, catalog.ErrProductNotFound
	}
	stats, err := s.reviewRepo.StatsForProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	response := toProductResponse(product, pricing.ParseAudience(string(audience)), s.clock(), stats)
	return &response, nil
}

// NewArrivals returns the newest published products
func (s *ProductService) NewArrivals(ctx context.Context, audience pricing.Audience, limit int) ([]ProductResponse, error) {
	products, err := s.productRepo.FindNewArrivals(ctx, sectionLimit(limit, defaultSectionLimit))
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, products, pricing.ParseAudience(string(audience)))
}

// OnSale returns products whose offer is active for audience right now, biggest saving first
func (s *ProductService) OnSale(ctx context.Context, audience pricing.Audience, limit int) ([]ProductResponse, error) {
	audience = pricing.ParseAudience(string(audience))
	products, err := s.productRepo.FindOnSale(ctx, audience, s.clock(), sectionLimit(limit, defaultSectionLimit))
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, products, audience)
}

// Search matches name, category and description, name matches first
func (s *ProductService) Search(ctx context.Context, query string, audience pricing.Audience, limit int) ([]ProductResponse, error) {
	products, err := s.productRepo.Search(ctx, query, sectionLimit(limit, defaultSearchLimit))
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, products, pricing.ParseAudience(string(audience)))
}

// respond prices the products and attaches review stats fetched in one query
func (s *ProductService) respond(ctx context.Context, products []catalog.Product, audience pricing.Audience) ([]ProductResponse, error) {
	if len(products) == 0 {
		return []ProductResponse{}, nil
	}
	ids := lo.Map(products, func(p catalog.Product, _ int) uuid.UUID { return p.ID })
	stats, err := s.reviewRepo.StatsForProducts(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load review stats", zap.Int("products", len(ids)), zap.Error(err))
		return nil, err
	}

	now := s.clock()
	return lo.Map(products, func(p catalog.Product, _ int) ProductResponse {
		st, ok := stats[p.ID]
		if !ok {
			st = catalog.ReviewStats{ProductID: p.ID}
		}
		return toProductResponse(&p, audience, now, st)
	}), nil
}

func sectionLimit(limit, def int) int {
	return shared.Page{Limit: limit}.Normalize(def).Limit
}
