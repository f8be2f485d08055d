package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appcatalog "github.com/sevenext/backend/internal/application/catalog"
	"github.com/sevenext/backend/internal/interfaces/http/dto"
)

// ProductListQuery filters the product listing
type ProductListQuery struct {
	dto.PageQuery
	Category  string `form:"category"`
	Status    string `form:"status" binding:"omitempty,oneof=Published Draft Archived"`
	MinPrice  string `form:"min_price" binding:"omitempty,numeric"`
	MaxPrice  string `form:"max_price" binding:"omitempty,numeric"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at name price"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	UserType  string `form:"user_type" binding:"omitempty,audience"`
}

// SectionQuery limits a product section
type SectionQuery struct {
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	UserType string `form:"user_type" binding:"omitempty,audience"`
}

// SearchQuery is a product search
type SearchQuery struct {
	Query    string `form:"query" binding:"required,max=100"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	UserType string `form:"user_type" binding:"omitempty,audience"`
}

// CreateReviewRequest is a product review
type CreateReviewRequest struct {
	Rating  float64 `json:"rating" binding:"required,gte=1,lte=5" example:"4.5"`
	Comment string  `json:"comment" binding:"omitempty,max=2000"`
}

// ProductHandler serves the catalog and product reviews
type ProductHandler struct {
	BaseHandler
	productService *appcatalog.ProductService
	reviewService  *appcatalog.ReviewService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *appcatalog.ProductService, reviewService *appcatalog.ReviewService) *ProductHandler {
	return &ProductHandler{productService: productService, reviewService: reviewService}
}

// List godoc
// @Summary      List products
// @Description  Published products priced for the caller's tier, newest first
// @Tags         products
// @Produce      json
// @Param        category   query string false "Category, 'all' for every category"
// @Param        status     query string false "Status" default(Published)
// @Param        min_price  query number false "Minimum tier base price"
// @Param        max_price  query number false "Maximum tier base price"
// @Param        sort_by    query string false "created_at, name or price"
// @Param        sort_order query string false "asc or desc"
// @Param        user_type  query string false "b2c or b2b, ignored when signed in"
// @Param        limit      query int    false "Page size" default(50)
// @Param        offset     query int    false "Offset"
// @Success      200 {object} APIResponse[[]appcatalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.productService.List(c.Request.Context(), appcatalog.ProductListInput{
		Category:  q.Category,
		Status:    q.Status,
		MinPrice:  optionalDecimal(q.MinPrice),
		MaxPrice:  optionalDecimal(q.MaxPrice),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     q.Limit,
		Offset:    q.Offset,
		Audience:  audienceOf(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, *page)
}

// Get godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id        path  string true  "Product ID"
// @Param        user_type query string false "b2c or b2b, ignored when signed in"
// @Success      200 {object} APIResponse[appcatalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id, audienceOf(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Section godoc
// @Summary      Product section
// @Description  new_arrivals lists the newest products, on_sale the active offers with the biggest saving first
// @Tags         products
// @Produce      json
// @Param        name      path  string true  "new_arrivals or on_sale"
// @Param        limit     query int    false "Number of products" default(10)
// @Param        user_type query string false "b2c or b2b, ignored when signed in"
// @Success      200 {object} APIResponse[[]appcatalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/section/{name} [get]
func (h *ProductHandler) Section(c *gin.Context) {
	var q SectionQuery
	if !h.BindQuery(c, &q) {
		return
	}

	var (
		products []appcatalog.ProductResponse
		err      error
	)
	switch c.Param("name") {
	case "new_arrivals":
		products, err = h.productService.NewArrivals(c.Request.Context(), audienceOf(c), q.Limit)
	case "on_sale":
		products, err = h.productService.OnSale(c.Request.Context(), audienceOf(c), q.Limit)
	default:
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Unknown product section")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Search godoc
// @Summary      Search products
// @Description  Matches name, category and description; name matches rank first
// @Tags         products
// @Produce      json
// @Param        query     query string true  "Search text"
// @Param        limit     query int    false "Number of products" default(20)
// @Param        user_type query string false "b2c or b2b, ignored when signed in"
// @Success      200 {object} APIResponse[[]appcatalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products/search [get]
func (h *ProductHandler) Search(c *gin.Context) {
	var q SearchQuery
	if !h.BindQuery(c, &q) {
		return
	}
	products, err := h.productService.Search(c.Request.Context(), q.Query, audienceOf(c), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// optionalDecimal parses a validated numeric query value; empty means unset
func optionalDecimal(v string) *decimal.Decimal {
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}

// CreateReview godoc
// @Summary      Review a product
// @Description  One review per user and product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Product ID"
// @Param        request body CreateReviewRequest true "Review"
// @Success      201 {object} APIResponse[appcatalog.ReviewSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/review [post]
func (h *ProductHandler) CreateReview(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	summary, err := h.reviewService.Create(c.Request.Context(), productID, userID, appcatalog.CreateReviewInput{
		Rating:  decimal.NewFromFloat(req.Rating),
		Comment: req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, summary)
}

// ListReviews godoc
// @Summary      List product reviews
// @Tags         products
// @Produce      json
// @Param        id     path  string true  "Product ID"
// @Param        limit  query int    false "Page size" default(50)
// @Param        offset query int    false "Offset"
// @Success      200 {object} APIResponse[appcatalog.ReviewListResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id}/reviews [get]
func (h *ProductHandler) ListReviews(c *gin.Context) {
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	reviews, err := h.reviewService.List(c.Request.Context(), productID, q.Page())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reviews)
}
