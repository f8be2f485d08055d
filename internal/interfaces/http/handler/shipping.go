package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	appshipping "github.com/sevenext/backend/internal/application/shipping"
	"github.com/sevenext/backend/internal/domain/shipping"
)

// ShippingItemRequest is one package line. Dimensions are optional.
type ShippingItemRequest struct {
	WeightKg  decimal.Decimal `json:"weight_kg" swaggertype:"number" example:"0.8"`
	LengthCm  decimal.Decimal `json:"length_cm" swaggertype:"number" example:"30"`
	BreadthCm decimal.Decimal `json:"breadth_cm" swaggertype:"number" example:"20"`
	HeightCm  decimal.Decimal `json:"height_cm" swaggertype:"number" example:"10"`
	Quantity  int             `json:"quantity" example:"2"`
}

// EstimateShippingRequest asks for the fee to a destination postal code
type EstimateShippingRequest struct {
	OriginPin      string                `json:"origin_pin" binding:"omitempty,pincode" example:"110001"`
	DestinationPin string                `json:"destination_pin" example:"560001"`
	Items          []ShippingItemRequest `json:"items"`
	PaymentMode    string                `json:"payment_mode" binding:"omitempty,oneof=Pre-paid COD prepaid cod" example:"Pre-paid"`
}

// ShippingHandler prices deliveries
type ShippingHandler struct {
	BaseHandler
	shippingService *appshipping.ShippingService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shippingService *appshipping.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

// Estimate godoc
// @Summary      Estimate shipping
// @Description  Live carrier rate with a rate card fallback. An undeliverable destination returns shipping_available=false with a reason.
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body EstimateShippingRequest true "Destination and items"
// @Success      200 {object} APIResponse[appshipping.EstimateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /shipping/estimate [post]
func (h *ShippingHandler) Estimate(c *gin.Context) {
	var req EstimateShippingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	estimate, err := h.shippingService.Estimate(c.Request.Context(), appshipping.EstimateShippingRequest{
		OriginPin:      req.OriginPin,
		DestinationPin: req.DestinationPin,
		Items: lo.Map(req.Items, func(i ShippingItemRequest, _ int) shipping.Item {
			return shipping.Item{
				WeightKg:  i.WeightKg,
				LengthCm:  i.LengthCm,
				BreadthCm: i.BreadthCm,
				HeightCm:  i.HeightCm,
				Quantity:  i.Quantity,
			}
		}),
		PaymentMode: req.PaymentMode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}
