package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
)

// ProductStatus represents the publication status of a product
type ProductStatus string

const (
	ProductStatusPublished ProductStatus = "Published"
	ProductStatusDraft     ProductStatus = "Draft"
	ProductStatusArchived  ProductStatus = "Archived"
)

// ErrProductNotFound is returned when a product id does not resolve
var ErrProductNotFound = shared.NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found")

// Product is a catalog item with independent B2C and B2B price tiers.
// Products are maintained by the back office; the storefront only reads them.
type Product struct {
	shared.BaseEntity
	Name           string           `gorm:"type:varchar(255);not null"`
	Category       string           `gorm:"type:varchar(100);index"`
	Description    string           `gorm:"type:text"`
	Status         ProductStatus    `gorm:"type:varchar(20);not null;default:'Published';index"`
	Stock          int              `gorm:"not null;default:0"`
	Image          string           `gorm:"type:text"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`

	B2CPrice          decimal.Decimal `gorm:"column:b2c_price;type:decimal(12,2);not null;default:0"`
	B2CActiveOffer    bool            `gorm:"column:b2c_active_offer;not null;default:false"`
	B2COfferPrice     decimal.Decimal `gorm:"column:b2c_offer_price;type:decimal(12,2);not null;default:0"`
	B2CDiscount       decimal.Decimal `gorm:"column:b2c_discount;type:decimal(5,2);not null;default:0"`
	B2COfferStartDate *time.Time      `gorm:"column:b2c_offer_start_date"`
	B2COfferEndDate   *time.Time      `gorm:"column:b2c_offer_end_date"`

	B2BPrice          decimal.Decimal `gorm:"column:b2b_price;type:decimal(12,2);not null;default:0"`
	B2BActiveOffer    bool            `gorm:"column:b2b_active_offer;not null;default:false"`
	B2BOfferPrice     decimal.Decimal `gorm:"column:b2b_offer_price;type:decimal(12,2);not null;default:0"`
	B2BDiscount       decimal.Decimal `gorm:"column:b2b_discount;type:decimal(5,2);not null;default:0"`
	B2BOfferStartDate *time.Time      `gorm:"column:b2b_offer_start_date"`
	B2BOfferEndDate   *time.Time      `gorm:"column:b2b_offer_end_date"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// IsPublished returns true if the product is visible in the storefront
func (p *Product) IsPublished() bool {
	return p.Status == ProductStatusPublished
}

// Offer returns the price tier selected by audience
func (p *Product) Offer(audience pricing.Audience) pricing.PriceOffer {
	if audience == pricing.AudienceB2B {
		return pricing.PriceOffer{
			BasePrice:             p.B2BPrice,
			OfferActive:           p.B2BActiveOffer,
			OfferPrice:            p.B2BOfferPrice,
			StaticDiscountPercent: p.B2BDiscount,
			Window:                pricing.OfferWindow{Start: p.B2BOfferStartDate, End: p.B2BOfferEndDate},
		}
	}
	return pricing.PriceOffer{
		BasePrice:             p.B2CPrice,
		OfferActive:           p.B2CActiveOffer,
		OfferPrice:            p.B2COfferPrice,
		StaticDiscountPercent: p.B2CDiscount,
		Window:                pricing.OfferWindow{Start: p.B2COfferStartDate, End: p.B2COfferEndDate},
	}
}

// EffectivePrice resolves the price shown to audience at now
func (p *Product) EffectivePrice(audience pricing.Audience, now time.Time) pricing.EffectivePrice {
	return pricing.Resolve(p.Offer(audience), now)
}

// InStock reports whether at least qty units are available
func (p *Product) InStock(qty int) bool {
	return p.Stock >= qty
}
