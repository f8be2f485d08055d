package trade

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder(NewOrderInput{
		ID:          "1717171717",
		CustomerID:  uuid.New(),
		Email:       " Buyer@Example.com ",
		Amount:      decimal.NewFromInt(560),
		ShippingFee: decimal.NewFromInt(60),
		Type:        pricing.AudienceB2B,
		PlacedOn:    "05/03/2025",
		Address:     "12 MG Road, Bengaluru",
		Items: []OrderItem{
			{Name: "Kurta", Quantity: 2, ColorHex: "#ff0000"},
			{Name: "Scarf", Quantity: 1},
		},
	})
	require.NoError(t, err)
	return order
}

func TestNewOrder(t *testing.T) {
	order := newTestOrder(t)

	assert.Equal(t, "buyer@example.com", order.Email)
	assert.Equal(t, 2, order.ItemsCount)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	assert.Equal(t, "processing", order.Status)
	assert.Equal(t, pricing.AudienceB2B, order.Type)
	assert.Equal(t, 2025, order.PlacedOn.Year())
	assert.Equal(t, 3, int(order.PlacedOn.Month()))
	assert.Equal(t, 5, order.PlacedOn.Day())
	assert.True(t, decimal.NewFromInt(500).Equal(order.Subtotal()))
}

func TestNewOrder_Validation(t *testing.T) {
	base := NewOrderInput{
		ID:       "o-1",
		Amount:   decimal.NewFromInt(100),
		PlacedOn: "01/01/2025",
		Items:    []OrderItem{{Name: "Kurta", Quantity: 1}},
	}

	tests := []struct {
		name   string
		mutate func(in *NewOrderInput)
		code   string
	}{
		{"missing id", func(in *NewOrderInput) { in.ID = " " }, "ORDER_ID_REQUIRED"},
		{"no items", func(in *NewOrderInput) { in.Items = nil }, "NO_ITEMS"},
		{"zero quantity", func(in *NewOrderInput) { in.Items = []OrderItem{{Name: "x"}} }, "INVALID_QUANTITY"},
		{"iso date", func(in *NewOrderInput) { in.PlacedOn = "2025-01-01" }, "INVALID_PLACED_ON"},
		{"shipping above total", func(in *NewOrderInput) { in.ShippingFee = decimal.NewFromInt(101) }, "INVALID_AMOUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := NewOrder(in)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestOrder_ApplyCoupon(t *testing.T) {
	order := newTestOrder(t)
	order.ApplyCoupon("SAVE10", decimal.RequireFromString("50.004"))

	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Equal(t, "50", order.Discount.String())
	assert.True(t, decimal.NewFromInt(510).Equal(order.AmountDue()))

	order.ApplyCoupon("HUGE", decimal.NewFromInt(10000))
	assert.True(t, decimal.Zero.Equal(order.AmountDue()))
}

func TestReturnStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ReturnStatus
		allowed  bool
	}{
		{ReturnStatusRequested, ReturnStatusApproved, true},
		{ReturnStatusRequested, ReturnStatusRejected, true},
		{ReturnStatusRequested, ReturnStatusCancelled, true},
		{ReturnStatusRequested, ReturnStatusCompleted, false},
		{ReturnStatusApproved, ReturnStatusCompleted, true},
		{ReturnStatusApproved, ReturnStatusCancelled, true},
		{ReturnStatusApproved, ReturnStatusRejected, false},
		{ReturnStatusRejected, ReturnStatusApproved, false},
		{ReturnStatusCompleted, ReturnStatusCancelled, false},
		{ReturnStatusCancelled, ReturnStatusRequested, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestNewReturnRequest(t *testing.T) {
	order := newTestOrder(t)

	req, err := NewReturnRequest(order, ReturnTypeExchange, "wrong size", "need L", []ReturnItem{{Name: "kurta", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusRequested, req.Status)
	assert.Equal(t, order.ID, req.OrderID)
	assert.Equal(t, order.CustomerID, req.CustomerID)
	assert.True(t, req.IsOpen())

	_, err = NewReturnRequest(order, "refund", "x", "", []ReturnItem{{Name: "Kurta", Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidReturnType)

	_, err = NewReturnRequest(order, ReturnTypeReturn, "x", "", []ReturnItem{{Name: "Hat", Quantity: 1}})
	assert.ErrorIs(t, err, ErrReturnItemNotFound)

	_, err = NewReturnRequest(order, ReturnTypeReturn, "x", "", []ReturnItem{{Name: "Kurta", Quantity: 3}})
	assert.Error(t, err)

	_, err = NewReturnRequest(order, ReturnTypeReturn, " ", "", []ReturnItem{{Name: "Kurta", Quantity: 1}})
	assert.Error(t, err)
}

func TestReturnRequest_Lifecycle(t *testing.T) {
	order := newTestOrder(t)
	req, err := NewReturnRequest(order, ReturnTypeReturn, "damaged", "", []ReturnItem{{Name: "Scarf", Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, req.Approve("pickup scheduled"))
	assert.Equal(t, ReturnStatusApproved, req.Status)
	assert.Nil(t, req.ResolvedAt)
	assert.Equal(t, 2, req.Version)

	require.NoError(t, req.Complete())
	assert.Equal(t, ReturnStatusCompleted, req.Status)
	assert.NotNil(t, req.ResolvedAt)
	assert.False(t, req.IsOpen())

	err = req.Cancel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot cancel return in COMPLETED status")
}

func TestReturnRequest_RejectRequiresReason(t *testing.T) {
	order := newTestOrder(t)
	req, err := NewReturnRequest(order, ReturnTypeReturn, "damaged", "", []ReturnItem{{Name: "Scarf", Quantity: 1}})
	require.NoError(t, err)

	assert.Error(t, req.Reject(""))
	require.NoError(t, req.Reject("outside return window"))
	assert.Equal(t, ReturnStatusRejected, req.Status)
	assert.Equal(t, "outside return window", req.ResolutionNote)
}
