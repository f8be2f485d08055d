package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

// PlacedOnLayout is the day/month/year layout orders carry from the mobile client
const PlacedOnLayout = "02/01/2006"

// PaymentStatus of an order
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Order errors
var (
	ErrOrderNotFound = shared.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
	ErrOrderExists   = shared.NewConflictError("ORDER_EXISTS", "Order already exists")
	ErrNoItems       = shared.NewValidationError("NO_ITEMS", "Order must contain at least one product")
)

// OrderItem is one product line as the client rendered it at checkout
type OrderItem struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Name      string     `json:"name"`
	ImageURL  string     `json:"image_url"`
	Quantity  int        `json:"quantity"`
	ColorHex  string     `json:"color_hex"`
}

// Order is a placed storefront order. The id is generated by the client.
type Order struct {
	ID            string           `gorm:"type:varchar(64);primaryKey"`
	CustomerID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Email         string           `gorm:"type:varchar(200);not null;index"`
	Amount        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ShippingFee   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Discount      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CouponCode    string           `gorm:"type:varchar(50)"`
	ItemsCount    int              `gorm:"not null"`
	Type          pricing.Audience `gorm:"type:varchar(10);not null"`
	Status        string           `gorm:"type:varchar(50);not null"`
	PaymentStatus PaymentStatus    `gorm:"type:varchar(20);not null;default:'pending'"`
	PlacedOn      time.Time        `gorm:"column:date;not null"`
	Address       string           `gorm:"type:text"`
	Items         []OrderItem      `gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time        `gorm:"not null"`
	UpdatedAt     time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrderInput carries the fields a client submits when placing an order
type NewOrderInput struct {
	ID          string
	CustomerID  uuid.UUID
	Email       string
	Amount      decimal.Decimal
	ShippingFee decimal.Decimal
	Type        pricing.Audience
	Status      string
	PlacedOn    string
	Address     string
	Items       []OrderItem
}

// NewOrder validates the input and creates an order with payment pending
func NewOrder(in NewOrderInput) (*Order, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, shared.NewValidationError("ORDER_ID_REQUIRED", "Order id is required")
	}
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Item quantity must be positive")
		}
	}
	if in.Amount.IsNegative() || in.ShippingFee.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Amounts cannot be negative")
	}
	if in.ShippingFee.GreaterThan(in.Amount) {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Shipping fee cannot exceed total price")
	}
	placedOn, err := time.ParseInLocation(PlacedOnLayout, strings.TrimSpace(in.PlacedOn), time.Local)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_PLACED_ON", "placed_on must be dd/mm/yyyy")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = "processing"
	}
	audience := in.Type
	if !audience.IsValid() {
		audience = pricing.AudienceB2C
	}

	now := time.Now()
	return &Order{
		ID:            id,
		CustomerID:    in.CustomerID,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Amount:        in.Amount.Round(2),
		ShippingFee:   in.ShippingFee.Round(2),
		Discount:      decimal.Zero,
		ItemsCount:    len(in.Items),
		Type:          audience,
		Status:        status,
		PaymentStatus: PaymentPending,
		PlacedOn:      placedOn,
		Address:       strings.TrimSpace(in.Address),
		Items:         in.Items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Subtotal is the goods value the coupon applies to
func (o *Order) Subtotal() decimal.Decimal {
	return o.Amount.Sub(o.ShippingFee)
}

// ApplyCoupon records the redeemed coupon and its discount
func (o *Order) ApplyCoupon(code string, discount decimal.Decimal) {
	o.CouponCode = code
	o.Discount = discount.Round(2)
	o.UpdatedAt = time.Now()
}

// AmountDue is the total after discount, never below zero
func (o *Order) AmountDue() decimal.Decimal {
	return decimal.Max(o.Amount.Sub(o.Discount), decimal.Zero)
}

// BelongsTo reports whether the order was placed by the customer
func (o *Order) BelongsTo(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}

// HasItem reports whether the order contains a line with this name
func (o *Order) HasItem(name string) (OrderItem, bool) {
	for _, item := range o.Items {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return OrderItem{}, false
}
