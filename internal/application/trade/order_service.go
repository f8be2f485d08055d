// Package trade places orders and manages their return requests.
package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/domain/trade"
	"github.com/sevenext/backend/internal/infrastructure/telemetry"
)

// ErrForeignOrders is returned when a caller lists orders of another email
var ErrForeignOrders = shared.NewForbiddenError("FORBIDDEN", "You can only view your own orders")

// OrderService places and lists orders
type OrderService struct {
	orderRepo trade.OrderRepository
	txScope   TransactionScope
	location  *time.Location
	clock     func() time.Time
	metrics   *telemetry.EngineMetrics
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService. Coupon expiry is compared in location.
func NewOrderService(
	orderRepo trade.OrderRepository,
	txScope TransactionScope,
	location *time.Location,
	metrics *telemetry.EngineMetrics,
	logger *zap.Logger,
) *OrderService {
	if location == nil {
		location = time.Local
	}
	if metrics == nil {
		metrics = telemetry.NoopEngineMetrics()
	}
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		location:  location,
		clock:     time.Now,
		metrics:   metrics,
		logger:    logger,
	}
}

// Place records an order for the customer. A coupon is evaluated against the goods
// subtotal and redeemed in the same transaction that inserts the order, so a rejected
// coupon or a duplicate order id leaves the usage counter untouched.
func (s *OrderService) Place(ctx context.Context, customer Customer, input PlaceOrderInput) (*OrderResponse, error) {
	email := strings.TrimSpace(input.CustomerEmail)
	if email == "" {
		email = customer.Email
	}

	order, err := trade.NewOrder(trade.NewOrderInput{
		ID:          input.OrderID,
		CustomerID:  customer.ID,
		Email:       email,
		Amount:      input.TotalPrice,
		ShippingFee: input.ShippingFee,
		Type:        pricing.ParseAudience(string(customer.Audience)),
		Status:      input.Status,
		PlacedOn:    input.PlacedOn,
		Address:     input.Address,
		Items: lo.Map(input.Items, func(item OrderItemInput, _ int) trade.OrderItem {
			return trade.OrderItem{
				ProductID: item.ProductID,
				Name:      strings.TrimSpace(item.Name),
				ImageURL:  item.ImageURL,
				Quantity:  item.Quantity,
				ColorHex:  item.ColorHex,
			}
		}),
	})
	if err != nil {
		return nil, err
	}

	couponCode := promotion.NormalizeCode(input.CouponCode)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if couponCode != "" {
			if err := s.redeemCoupon(ctx, repos.CouponRepo(), order, couponCode); err != nil {
				return err
			}
		}
		return repos.OrderRepo().Create(ctx, order)
	})
	if err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) {
			s.logger.Error("Failed to place order", zap.String("order_id", order.ID), zap.Error(err))
		}
		return nil, err
	}

	if couponCode != "" {
		s.metrics.RecordCoupon(ctx, "redeemed")
	}
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customer.ID.String()),
		zap.String("coupon", order.CouponCode))

	response := toOrderResponse(order)
	return &response, nil
}

func (s *OrderService) redeemCoupon(ctx context.Context, coupons promotion.CouponRepository, order *trade.Order, code string) error {
	coupon, err := coupons.FindByCodeForUpdate(ctx, code)
	if err != nil {
		return err
	}
	discount, err := coupon.Evaluate(order.Subtotal(), s.clock().In(s.location))
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			s.metrics.RecordCoupon(ctx, domainErr.Code)
		}
		return err
	}
	if err := coupon.Redeem(); err != nil {
		return err
	}
	if err := coupons.Save(ctx, coupon); err != nil {
		return err
	}
	order.ApplyCoupon(coupon.Code, discount)
	return nil
}

// ListByEmail returns the orders placed with email. Callers may only read their own.
func (s *OrderService) ListByEmail(ctx context.Context, customer Customer, email string) ([]OrderResponse, error) {
	if !strings.EqualFold(strings.TrimSpace(email), customer.Email) {
		return nil, ErrForeignOrders
	}
	orders, err := s.orderRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to list orders by email", zap.Error(err))
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// ListMine returns a page of the customer's orders, newest first
func (s *OrderService) ListMine(ctx context.Context, customerID uuid.UUID, page shared.Page) (*shared.Paginated[OrderResponse], error) {
	page = page.Normalize(shared.DefaultPageLimit)
	orders, total, err := s.orderRepo.FindByCustomer(ctx, customerID, page)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.String("customer_id", customerID.String()), zap.Error(err))
		return nil, err
	}
	result := shared.NewPaginated(toOrderResponses(orders), total, page)
	return &result, nil
}
