package promotion

import "context"

// CouponRepository defines persistence for coupons
type CouponRepository interface {
	// FindByCode finds a coupon by its normalized code
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// FindByCodeForUpdate finds a coupon and locks its row for the surrounding transaction
	FindByCodeForUpdate(ctx context.Context, code string) (*Coupon, error)

	// Save persists a coupon
	Save(ctx context.Context, coupon *Coupon) error
}
