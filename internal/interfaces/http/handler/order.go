package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	apptrade "github.com/sevenext/backend/internal/application/trade"
	"github.com/sevenext/backend/internal/interfaces/http/dto"
	"github.com/sevenext/backend/internal/interfaces/http/middleware"
)

// OrderItemRequest is one product line at checkout
type OrderItemRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	Name      string     `json:"name" binding:"required,max=255"`
	ImageURL  string     `json:"image_url" binding:"omitempty,max=1024"`
	Quantity  int        `json:"quantity" binding:"required,gte=1"`
	ColorHex  string     `json:"color_hex" binding:"omitempty,max=16"`
}

// PlaceOrderRequest is an order as the storefront submits it. The price tier is taken
// from the token, never from the body.
type PlaceOrderRequest struct {
	OrderID       string             `json:"order_id" binding:"required,max=64" example:"ORD-20260114-0001"`
	PlacedOn      string             `json:"placed_on" binding:"required" example:"14/01/2026"`
	OrderStatus   string             `json:"order_status" binding:"omitempty,max=50" example:"Processing"`
	Products      []OrderItemRequest `json:"products" binding:"required,min=1,dive"`
	TotalPrice    decimal.Decimal    `json:"total_price" swaggertype:"number"`
	ShippingFee   decimal.Decimal    `json:"shipping_fee" swaggertype:"number"`
	CustomerEmail string             `json:"customer_email" binding:"omitempty,email"`
	Address       string             `json:"customer_address_text" binding:"required,max=1000"`
	CouponCode    string             `json:"coupon_code" binding:"omitempty,max=50"`
}

// OrderHandler places and lists orders of the signed-in customer
type OrderHandler struct {
	BaseHandler
	orderService *apptrade.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// customer builds the caller from the token, writing a 401 when there is none
func (h *BaseHandler) customer(c *gin.Context) (apptrade.Customer, bool) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return apptrade.Customer{}, false
	}
	claims := middleware.GetJWTClaims(c)
	return apptrade.Customer{ID: userID, Email: claims.Email(), Audience: claims.UserType}, true
}

// Place godoc
// @Summary      Place an order
// @Description  Records a checkout. A coupon is validated against the goods total and redeemed in the same transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body PlaceOrderRequest true "Order"
// @Success      201 {object} APIResponse[apptrade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/place [post]
func (h *OrderHandler) Place(c *gin.Context) {
	customer, ok := h.customer(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Place(c.Request.Context(), customer, apptrade.PlaceOrderInput{
		OrderID:  req.OrderID,
		PlacedOn: req.PlacedOn,
		Status:   req.OrderStatus,
		Items: lo.Map(req.Products, func(p OrderItemRequest, _ int) apptrade.OrderItemInput {
			return apptrade.OrderItemInput{
				ProductID: p.ProductID,
				Name:      p.Name,
				ImageURL:  p.ImageURL,
				Quantity:  p.Quantity,
				ColorHex:  p.ColorHex,
			}
		}),
		TotalPrice:    req.TotalPrice,
		ShippingFee:   req.ShippingFee,
		CustomerEmail: req.CustomerEmail,
		Address:       req.Address,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ListMine godoc
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        limit  query int false "Page size" default(50)
// @Param        offset query int false "Offset"
// @Success      200 {object} APIResponse[[]apptrade.OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.orderService.ListMine(c.Request.Context(), userID, q.Page())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, *page)
}

// ListByEmail godoc
// @Summary      List orders by email
// @Description  Only the caller's own email may be read
// @Tags         orders
// @Produce      json
// @Param        email path string true "Customer email"
// @Success      200 {object} APIResponse[[]apptrade.OrderResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/user/{email} [get]
func (h *OrderHandler) ListByEmail(c *gin.Context) {
	customer, ok := h.customer(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListByEmail(c.Request.Context(), customer, c.Param("email"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
