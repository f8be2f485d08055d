// Package pricing resolves the price a shopper sees for a product tier at a given instant.
package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Audience selects which tier of a product's prices applies
type Audience string

const (
	AudienceB2C Audience = "b2c"
	AudienceB2B Audience = "b2b"
)

// ParseAudience maps a raw tag to an Audience, defaulting to b2c
func ParseAudience(s string) Audience {
	if strings.EqualFold(strings.TrimSpace(s), string(AudienceB2B)) {
		return AudienceB2B
	}
	return AudienceB2C
}

// IsValid returns true for the two known audiences
func (a Audience) IsValid() bool {
	return a == AudienceB2C || a == AudienceB2B
}

// String returns the string representation of the audience
func (a Audience) String() string {
	return string(a)
}

// OfferWindow bounds when a promotional price is honored. A nil bound is open.
type OfferWindow struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether now lies inside the window, bounds inclusive
func (w OfferWindow) Contains(now time.Time) bool {
	if w.Start != nil && w.Start.After(now) {
		return false
	}
	if w.End != nil && w.End.Before(now) {
		return false
	}
	return true
}

// PriceOffer is one tier's price and offer fields
type PriceOffer struct {
	BasePrice             decimal.Decimal
	OfferActive           bool
	OfferPrice            decimal.Decimal
	StaticDiscountPercent decimal.Decimal
	Window                OfferWindow
}

// IsActiveAt reports whether the promotional price applies at now
func (o PriceOffer) IsActiveAt(now time.Time) bool {
	return o.OfferActive && o.OfferPrice.IsPositive() && o.Window.Contains(now)
}

// EffectivePrice is the resolved price for display and checkout
type EffectivePrice struct {
	CurrentPrice    decimal.Decimal `json:"current_price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent decimal.Decimal `json:"discount_percentage"`
	OnOffer         bool            `json:"on_offer"`
}

var hundred = decimal.NewFromInt(100)

// Resolve computes the effective price of an offer at now.
// It has no error conditions: zero values mean no price, no offer, open window.
func Resolve(offer PriceOffer, now time.Time) EffectivePrice {
	result := EffectivePrice{
		OriginalPrice: offer.BasePrice,
	}

	if offer.IsActiveAt(now) {
		result.CurrentPrice = offer.OfferPrice
		result.OnOffer = true
		result.DiscountPercent = OfferDiscountPercent(offer.BasePrice, offer.OfferPrice)
		return result
	}

	result.CurrentPrice = offer.BasePrice
	result.DiscountPercent = offer.StaticDiscountPercent
	return result
}

// OfferDiscountPercent returns round((base-offer)/base*100, 2), or zero when base is not positive
func OfferDiscountPercent(base, offer decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return base.Sub(offer).Div(base).Mul(hundred).Round(2)
}
