package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenext/backend/internal/domain/pricing"
)

func TestProduct_EffectivePrice_SelectsTier(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	end := now.Add(24 * time.Hour)

	p := &Product{
		B2CPrice:        decimal.NewFromInt(200),
		B2CActiveOffer:  true,
		B2COfferPrice:   decimal.NewFromInt(150),
		B2COfferEndDate: &end,
		B2BPrice:        decimal.NewFromInt(160),
		B2BDiscount:     decimal.NewFromInt(8),
	}

	b2c := p.EffectivePrice(pricing.AudienceB2C, now)
	assert.True(t, decimal.NewFromInt(150).Equal(b2c.CurrentPrice))
	assert.True(t, decimal.NewFromInt(200).Equal(b2c.OriginalPrice))
	assert.True(t, decimal.NewFromInt(25).Equal(b2c.DiscountPercent))

	b2b := p.EffectivePrice(pricing.AudienceB2B, now)
	assert.True(t, decimal.NewFromInt(160).Equal(b2b.CurrentPrice))
	assert.True(t, decimal.NewFromInt(8).Equal(b2b.DiscountPercent))
	assert.False(t, b2b.OnOffer)

	later := p.EffectivePrice(pricing.AudienceB2C, end.Add(time.Second))
	assert.True(t, decimal.NewFromInt(200).Equal(later.CurrentPrice))
}

func TestNewReview(t *testing.T) {
	productID, userID := uuid.New(), uuid.New()

	r, err := NewReview(productID, userID, decimal.RequireFromString("4.5"), "  solid  ")
	require.NoError(t, err)
	assert.Equal(t, "solid", r.Comment)
	assert.Equal(t, productID, r.ProductID)

	for _, bad := range []string{"0", "0.9", "5.1", "-3"} {
		_, err := NewReview(productID, userID, decimal.RequireFromString(bad), "")
		assert.ErrorIs(t, err, ErrInvalidRating, bad)
	}
}

func TestReviewStats_Rounded(t *testing.T) {
	s := ReviewStats{Count: 3, AverageRating: decimal.RequireFromString("4.3333333")}
	assert.Equal(t, "4.33", s.Rounded().AverageRating.String())
}
