package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/domain/trade"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newOrderService(scope *fakeScope) *OrderService {
	svc := NewOrderService(scope.orders, scope, time.UTC, nil, zap.NewNop())
	svc.clock = func() time.Time { return fixedNow }
	return svc
}

func testCustomer() Customer {
	return Customer{ID: uuid.New(), Email: "asha@example.com", Audience: pricing.AudienceB2C}
}

func placeInput() PlaceOrderInput {
	return PlaceOrderInput{
		OrderID:     "ORD-1001",
		PlacedOn:    "09/03/2025",
		Status:      "processing",
		TotalPrice:  decimal.NewFromInt(550),
		ShippingFee: decimal.NewFromInt(50),
		Address:     "12 MG Road, Bengaluru 560001",
		Items: []OrderItemInput{
			{Name: "Linen Shirt", ImageURL: "https://cdn.example.com/shirt.jpg", Quantity: 2, ColorHex: "#ffffff"},
		},
	}
}

func saveTenCoupon(usage string) *promotion.Coupon {
	return &promotion.Coupon{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          "SAVE10",
		Status:        promotion.CouponStatusActive,
		DiscountType:  promotion.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: decimal.Zero,
		UsageCount:    usage,
	}
}

func TestOrderService_Place(t *testing.T) {
	t.Run("without coupon", func(t *testing.T) {
		scope := newFakeScope()
		customer := testCustomer()
		customer.Audience = pricing.AudienceB2B
		scope.orders.On("Create", mock.Anything, mock.AnythingOfType("*trade.Order")).Return(nil)

		result, err := newOrderService(scope).Place(context.Background(), customer, placeInput())

		require.NoError(t, err)
		assert.Equal(t, "ORD-1001", result.ID)
		assert.Equal(t, "asha@example.com", result.CustomerEmail, "caller email fills a missing customer email")
		assert.Equal(t, pricing.AudienceB2B, result.UserType)
		assert.Equal(t, string(trade.PaymentPending), result.PaymentStatus)
		assert.Equal(t, "09/03/2025", result.PlacedOn)
		assert.True(t, result.Discount.IsZero())
		assert.True(t, result.AmountDue.Equal(decimal.NewFromInt(550)))
		scope.coupons.AssertNotCalled(t, "FindByCodeForUpdate", mock.Anything, mock.Anything)

		created := scope.orders.Calls[0].Arguments.Get(1).(*trade.Order)
		assert.Equal(t, customer.ID, created.CustomerID)
		assert.Equal(t, 1, created.ItemsCount)
	})

	t.Run("coupon is redeemed with the order", func(t *testing.T) {
		scope := newFakeScope()
		coupon := saveTenCoupon("3/100")
		scope.coupons.On("FindByCodeForUpdate", mock.Anything, "SAVE10").Return(coupon, nil)
		scope.coupons.On("Save", mock.Anything, coupon).Return(nil)
		scope.orders.On("Create", mock.Anything, mock.AnythingOfType("*trade.Order")).Return(nil)

		input := placeInput()
		input.CouponCode = " save10 "
		result, err := newOrderService(scope).Place(context.Background(), testCustomer(), input)

		require.NoError(t, err)
		assert.Equal(t, "4/100", coupon.UsageCount)
		assert.Equal(t, "SAVE10", result.CouponCode)
		// 10% of the 500 goods subtotal; shipping is not discounted
		assert.True(t, result.Discount.Equal(decimal.NewFromInt(50)))
		assert.True(t, result.AmountDue.Equal(decimal.NewFromInt(500)))
		scope.coupons.AssertExpectations(t)
		scope.orders.AssertExpectations(t)
	})

	t.Run("rejected coupon aborts the order", func(t *testing.T) {
		scope := newFakeScope()
		scope.coupons.On("FindByCodeForUpdate", mock.Anything, "SAVE10").Return(saveTenCoupon("100/100"), nil)

		input := placeInput()
		input.CouponCode = "SAVE10"
		_, err := newOrderService(scope).Place(context.Background(), testCustomer(), input)

		require.ErrorIs(t, err, promotion.ErrUsageLimitReached)
		assert.True(t, scope.rolledBack)
		scope.coupons.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		scope.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown coupon", func(t *testing.T) {
		scope := newFakeScope()
		scope.coupons.On("FindByCodeForUpdate", mock.Anything, "GHOST").Return(nil, promotion.ErrInvalidCoupon)

		input := placeInput()
		input.CouponCode = "ghost"
		_, err := newOrderService(scope).Place(context.Background(), testCustomer(), input)

		assert.ErrorIs(t, err, promotion.ErrInvalidCoupon)
	})

	t.Run("duplicate order id", func(t *testing.T) {
		scope := newFakeScope()
		scope.orders.On("Create", mock.Anything, mock.Anything).Return(trade.ErrOrderExists)

		_, err := newOrderService(scope).Place(context.Background(), testCustomer(), placeInput())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.KindConflict, domainErr.Kind)
		assert.True(t, scope.rolledBack)
	})

	t.Run("invalid placed_on", func(t *testing.T) {
		scope := newFakeScope()
		input := placeInput()
		input.PlacedOn = "2025-03-09"

		_, err := newOrderService(scope).Place(context.Background(), testCustomer(), input)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.KindValidation, domainErr.Kind)
		scope.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOrderService_ListByEmail(t *testing.T) {
	customer := testCustomer()

	t.Run("own email, any case", func(t *testing.T) {
		scope := newFakeScope()
		order, err := trade.NewOrder(trade.NewOrderInput{
			ID: "ORD-1", CustomerID: customer.ID, Email: customer.Email,
			Amount: decimal.NewFromInt(100), PlacedOn: "01/03/2025",
			Items: []trade.OrderItem{{Name: "Mug", Quantity: 1}},
		})
		require.NoError(t, err)
		scope.orders.On("FindByEmail", mock.Anything, "Asha@Example.com").Return([]trade.Order{*order}, nil)

		result, err := newOrderService(scope).ListByEmail(context.Background(), customer, "Asha@Example.com")

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "ORD-1", result[0].ID)
	})

	t.Run("someone else's email", func(t *testing.T) {
		scope := newFakeScope()

		_, err := newOrderService(scope).ListByEmail(context.Background(), customer, "other@example.com")

		assert.ErrorIs(t, err, ErrForeignOrders)
		scope.orders.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestOrderService_ListMine(t *testing.T) {
	scope := newFakeScope()
	customer := testCustomer()
	scope.orders.On("FindByCustomer", mock.Anything, customer.ID, shared.Page{Limit: shared.MaxPageLimit, Offset: 0}).
		Return([]trade.Order{}, int64(0), nil)

	result, err := newOrderService(scope).ListMine(context.Background(), customer.ID, shared.Page{Limit: 500})

	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, int64(0), result.Total)
	assert.Equal(t, shared.MaxPageLimit, result.Limit)
}
