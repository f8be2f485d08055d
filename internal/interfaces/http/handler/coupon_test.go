package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apppromotion "github.com/sevenext/backend/internal/application/promotion"
	"github.com/sevenext/backend/internal/domain/promotion"
	"github.com/sevenext/backend/internal/domain/shared"
)

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindByCodeForUpdate(ctx context.Context, code string) (*promotion.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func couponRouter(repo promotion.CouponRepository) *gin.Engine {
	h := NewCouponHandler(apppromotion.NewCouponService(repo, time.UTC, nil, zap.NewNop()))
	r := gin.New()
	r.POST("/coupons/apply", h.Apply)
	return r
}

func TestCouponHandler_Apply(t *testing.T) {
	repo := new(MockCouponRepository)
	repo.On("FindByCode", mock.Anything, "FLAT100").Return(&promotion.Coupon{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          "FLAT100",
		Status:        promotion.CouponStatusActive,
		DiscountType:  promotion.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(100),
		MinOrderValue: decimal.NewFromInt(499),
		UsageCount:    "0/10",
	}, nil)
	repo.On("FindByCode", mock.Anything, "NOPE").Return(nil, promotion.ErrInvalidCoupon)
	r := couponRouter(repo)

	t.Run("applied", func(t *testing.T) {
		w := performJSON(r, http.MethodPost, "/coupons/apply", map[string]any{"code": " flat100 ", "subtotal": 1299}, "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decodeData[apppromotion.ApplyCouponResult](t, w)
		assert.Equal(t, "100", result.Discount.String())
		assert.Equal(t, "1199", result.FinalTotal.String())
	})

	t.Run("below minimum", func(t *testing.T) {
		w := performJSON(r, http.MethodPost, "/coupons/apply", map[string]any{"code": "FLAT100", "subtotal": 200}, "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, promotion.CodeMinimumNotMet, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "499.00")
	})

	t.Run("unknown code", func(t *testing.T) {
		w := performJSON(r, http.MethodPost, "/coupons/apply", map[string]any{"code": "nope", "subtotal": 200}, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, promotion.CodeInvalidCoupon, decodeResponse(t, w).Error.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		w := performJSON(r, http.MethodPost, "/coupons/apply", map[string]any{"subtotal": 200}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
