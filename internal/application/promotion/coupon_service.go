// Package promotion applies coupons to a cart subtotal.
package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/infrastructure/telemetry"
)

// outcome recorded for an accepted coupon
const outcomeApplied = "applied"

// ApplyCouponInput is a coupon code checked against a subtotal
type ApplyCouponInput struct {
	Code     string
	Subtotal decimal.Decimal
}

// ApplyCouponResult is the priced outcome of an accepted coupon
type ApplyCouponResult struct {
	Code       string          `json:"code"`
	Discount   decimal.Decimal `json:"discount_amount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	FinalTotal decimal.Decimal `json:"final_total"`
}

// CouponService evaluates coupons without redeeming them
type CouponService struct {
	couponRepo promotion.CouponRepository
	location   *time.Location
	clock      func() time.Time
	metrics    *telemetry.EngineMetrics
	logger     *zap.Logger
}

// NewCouponService creates a new CouponService. Expiry is compared in location.
func NewCouponService(
	couponRepo promotion.CouponRepository,
	location *time.Location,
	metrics *telemetry.EngineMetrics,
	logger *zap.Logger,
) *CouponService {
	if location == nil {
		location = time.Local
	}
	if metrics == nil {
		metrics = telemetry.NoopEngineMetrics()
	}
	return &CouponService{
		couponRepo: couponRepo,
		location:   location,
		clock:      time.Now,
		metrics:    metrics,
		logger:     logger,
	}
}

// Apply checks a coupon against the subtotal and reports the discount and final total.
// The usage counter is left untouched; redemption happens when an order is placed.
func (s *CouponService) Apply(ctx context.Context, input ApplyCouponInput) (*ApplyCouponResult, error) {
	code := promotion.NormalizeCode(input.Code)
	if code == "" {
		return nil, shared.NewValidationError("INVALID_INPUT", "Coupon code is required")
	}
	if input.Subtotal.IsNegative() {
		return nil, shared.NewValidationError("INVALID_INPUT", "Subtotal cannot be negative")
	}

	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, promotion.ErrInvalidCoupon) {
			s.metrics.RecordCoupon(ctx, promotion.CodeInvalidCoupon)
			return nil, promotion.ErrInvalidCoupon
		}
		s.logger.Error("Failed to load coupon", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	discount, err := coupon.Evaluate(input.Subtotal, s.clock().In(s.location))
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			s.metrics.RecordCoupon(ctx, domainErr.Code)
		}
		s.logger.Debug("Coupon rejected", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordCoupon(ctx, outcomeApplied)
	return &ApplyCouponResult{
		Code:       coupon.Code,
		Discount:   discount,
		Subtotal:   input.Subtotal.Round(2),
		FinalTotal: decimal.Max(input.Subtotal.Sub(discount), decimal.Zero).Round(2),
	}, nil
}
