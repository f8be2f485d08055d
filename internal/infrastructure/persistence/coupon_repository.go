package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevenext/backend/internal/domain/promotion"
)

// GormCouponRepository implements CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode finds a coupon by its normalized code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	return r.find(r.db.WithContext(ctx), code)
}

// FindByCodeForUpdate finds a coupon with SELECT ... FOR UPDATE.
// It only holds the lock when called on a transaction handle.
func (r *GormCouponRepository) FindByCodeForUpdate(ctx context.Context, code string) (*promotion.Coupon, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), code)
}

// Save persists the coupon's mutable fields
func (r *GormCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	return r.db.WithContext(ctx).Model(coupon).
		Updates(map[string]any{
			"usage_count": coupon.UsageCount,
			"updated_at":  coupon.UpdatedAt,
		}).Error
}

func (r *GormCouponRepository) find(db *gorm.DB, code string) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := db.Where("UPPER(code) = ?", promotion.NormalizeCode(code)).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promotion.ErrInvalidCoupon
		}
		return nil, err
	}
	return &coupon, nil
}

var _ promotion.CouponRepository = (*GormCouponRepository)(nil)
