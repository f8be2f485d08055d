package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apppromotion "github.com/sevenext/backend/internal/application/promotion"
)

// ApplyCouponRequest checks a coupon against a cart subtotal
type ApplyCouponRequest struct {
	Code     string          `json:"code" binding:"required,max=50" example:"WELCOME10"`
	Subtotal decimal.Decimal `json:"subtotal" swaggertype:"number" example:"1299.00"`
}

// CouponHandler previews coupon discounts. Redemption happens when the order is placed.
type CouponHandler struct {
	BaseHandler
	couponService *apppromotion.CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService *apppromotion.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// Apply godoc
// @Summary      Apply a coupon
// @Description  Validates the coupon and returns the discount and final total without using it up
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        request body ApplyCouponRequest true "Coupon and subtotal"
// @Success      200 {object} APIResponse[apppromotion.ApplyCouponResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /coupons/apply [post]
func (h *CouponHandler) Apply(c *gin.Context) {
	var req ApplyCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.couponService.Apply(c.Request.Context(), apppromotion.ApplyCouponInput{
		Code:     req.Code,
		Subtotal: req.Subtotal,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
