// Package promotion holds coupons and the rules deciding whether one applies to an order.
package promotion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sevenext/backend/internal/domain/shared"
)

// CouponStatus represents whether a coupon may be redeemed
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "Active"
	CouponStatusInactive CouponStatus = "Inactive"
)

// DiscountType is how a coupon's value is interpreted
type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypePercentage DiscountType = "percentage"
)

// Rejection codes
const (
	CodeInvalidCoupon       = "INVALID_COUPON"
	CodeInactiveCoupon      = "INACTIVE_COUPON"
	CodeExpired             = "COUPON_EXPIRED"
	CodeUsageLimitReached   = "USAGE_LIMIT_REACHED"
	CodeMinimumNotMet       = "MINIMUM_NOT_MET"
	CodeInvalidDiscountType = "INVALID_DISCOUNT_TYPE"
)

// Coupon errors
var (
	ErrInvalidCoupon       = shared.NewNotFoundError(CodeInvalidCoupon, "Invalid coupon code")
	ErrInactiveCoupon      = shared.NewDomainError(CodeInactiveCoupon, "Coupon is not active")
	ErrCouponExpired       = shared.NewDomainError(CodeExpired, "Coupon has expired")
	ErrUsageLimitReached   = shared.NewDomainError(CodeUsageLimitReached, "Coupon usage limit has been reached")
	ErrInvalidDiscountType = shared.NewDomainError(CodeInvalidDiscountType, "Coupon has an unsupported discount type")
)

var hundred = decimal.NewFromInt(100)

// Coupon is a redeemable discount code. It is created by admin tooling and only read here,
// except for the usage counter which order placement advances.
type Coupon struct {
	shared.BaseEntity
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description   string          `gorm:"type:text"`
	Status        CouponStatus    `gorm:"type:varchar(20);not null;default:'Active'"`
	DiscountType  DiscountType    `gorm:"type:varchar(20);not null"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MinOrderValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UsageCount    string          `gorm:"type:varchar(32);not null;default:''"` // "current/limit"
	ExpiryDate    *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (Coupon) TableName() string {
	return "coupons"
}

// NormalizeCode trims and upper-cases a coupon code for lookup
func NormalizeCode(code string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(code))
}

// Usage is the parsed "current/limit" counter
type Usage struct {
	Current   int
	Limit     int
	Unlimited bool
}

// Exhausted reports whether the limit has been reached
func (u Usage) Exhausted() bool {
	return !u.Unlimited && u.Current >= u.Limit
}

// String formats the usage back to its stored form
func (u Usage) String() string {
	if u.Unlimited {
		return ""
	}
	return fmt.Sprintf("%d/%d", u.Current, u.Limit)
}

// ParseUsage parses "current/limit". An empty string is unlimited.
func ParseUsage(raw string) (Usage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Usage{Unlimited: true}, nil
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return Usage{}, fmt.Errorf("malformed usage %q", raw)
	}
	current, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || current < 0 {
		return Usage{}, fmt.Errorf("malformed usage current %q", parts[0])
	}
	limit, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || limit < 0 {
		return Usage{}, fmt.Errorf("malformed usage limit %q", parts[1])
	}
	return Usage{Current: current, Limit: limit}, nil
}

// Usage returns the parsed usage counter
func (c *Coupon) Usage() (Usage, error) {
	return ParseUsage(c.UsageCount)
}

// IsExpiredAt compares the expiry date with the calendar date of now.
// A coupon expiring today is still valid.
func (c *Coupon) IsExpiredAt(now time.Time) bool {
	if c.ExpiryDate == nil {
		return false
	}
	y, m, d := c.ExpiryDate.Date()
	expiry := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	ny, nm, nd := now.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	return expiry.Before(today)
}

// Evaluate checks eligibility against subtotal at now and returns the discount rounded to 2 places.
// It never changes the usage counter.
func (c *Coupon) Evaluate(subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if c.Status != CouponStatusActive {
		return decimal.Zero, ErrInactiveCoupon
	}
	if c.IsExpiredAt(now) {
		return decimal.Zero, ErrCouponExpired
	}

	usage, err := c.Usage()
	if err != nil {
		return decimal.Zero, ErrInvalidCoupon
	}
	if usage.Exhausted() {
		return decimal.Zero, ErrUsageLimitReached
	}

	if subtotal.LessThan(c.MinOrderValue) {
		return decimal.Zero, shared.NewDomainError(CodeMinimumNotMet,
			fmt.Sprintf("Minimum order value of %s required to use this coupon", c.MinOrderValue.StringFixed(2)))
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypeFixed:
		discount = c.DiscountValue
	case DiscountTypePercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(hundred)
	default:
		return decimal.Zero, ErrInvalidDiscountType
	}

	return discount.Round(2), nil
}

// Redeem advances the usage counter by one. It fails once the limit is reached.
// Coupons without a counter are unlimited and stay untracked.
func (c *Coupon) Redeem() error {
	usage, err := c.Usage()
	if err != nil {
		return ErrInvalidCoupon
	}
	if usage.Exhausted() {
		return ErrUsageLimitReached
	}
	if usage.Unlimited {
		return nil
	}
	usage.Current++
	c.UsageCount = usage.String()
	c.Touch()
	return nil
}
