package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/trade"
)

// Customer is the authenticated caller an order or return is recorded for
type Customer struct {
	ID       uuid.UUID
	Email    string
	Audience pricing.Audience
}

// OrderItemInput is one product line submitted at checkout
type OrderItemInput struct {
	ProductID *uuid.UUID
	Name      string
	ImageURL  string
	Quantity  int
	ColorHex  string
}

// PlaceOrderInput is an order as the client submits it
type PlaceOrderInput struct {
	OrderID       string
	PlacedOn      string
	Status        string
	Items         []OrderItemInput
	TotalPrice    decimal.Decimal
	ShippingFee   decimal.Decimal
	CustomerEmail string
	Address       string
	CouponCode    string
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            string            `json:"order_id"`
	CustomerEmail string            `json:"customer_email"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	ShippingFee   decimal.Decimal   `json:"shipping_fee"`
	Discount      decimal.Decimal   `json:"discount_amount"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	AmountDue     decimal.Decimal   `json:"amount_due"`
	ItemsCount    int               `json:"products_count"`
	UserType      pricing.Audience  `json:"user_type"`
	Status        string            `json:"order_status"`
	PaymentStatus string            `json:"payment_status"`
	PlacedOn      string            `json:"placed_on"`
	Address       string            `json:"customer_address_text"`
	Products      []trade.OrderItem `json:"products"`
	CreatedAt     time.Time         `json:"created_at"`
}

func toOrderResponse(o *trade.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		CustomerEmail: o.Email,
		TotalPrice:    o.Amount,
		ShippingFee:   o.ShippingFee,
		Discount:      o.Discount,
		CouponCode:    o.CouponCode,
		AmountDue:     o.AmountDue(),
		ItemsCount:    o.ItemsCount,
		UserType:      o.Type,
		Status:        o.Status,
		PaymentStatus: string(o.PaymentStatus),
		PlacedOn:      o.PlacedOn.Format(trade.PlacedOnLayout),
		Address:       o.Address,
		Products:      o.Items,
		CreatedAt:     o.CreatedAt,
	}
}

func toOrderResponses(orders []trade.Order) []OrderResponse {
	return lo.Map(orders, func(o trade.Order, _ int) OrderResponse {
		return toOrderResponse(&o)
	})
}

// ReturnItemInput is one line being sent back
type ReturnItemInput struct {
	Name     string
	Quantity int
}

// CreateReturnInput opens a return or exchange for an order
type CreateReturnInput struct {
	OrderID      string
	Type         string
	Reason       string
	ExchangeNote string
	Items        []ReturnItemInput
}

// ReturnResponse represents a return request in API responses
type ReturnResponse struct {
	ID             uuid.UUID          `json:"id"`
	OrderID        string             `json:"order_id"`
	Type           trade.ReturnType   `json:"type"`
	Reason         string             `json:"reason"`
	ExchangeNote   string             `json:"exchange_note,omitempty"`
	Items          []trade.ReturnItem `json:"items"`
	Status         trade.ReturnStatus `json:"status"`
	ResolutionNote string             `json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func toReturnResponse(r *trade.ReturnRequest) ReturnResponse {
	return ReturnResponse{
		ID:             r.ID,
		OrderID:        r.OrderID,
		Type:           r.Type,
		Reason:         r.Reason,
		ExchangeNote:   r.ExchangeNote,
		Items:          r.Items,
		Status:         r.Status,
		ResolutionNote: r.ResolutionNote,
		ResolvedAt:     r.ResolvedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
