package shipping

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/shared"
)

// PricingSource tells where a fee came from
type PricingSource string

const (
	PricingSourceCarrier  PricingSource = "carrier"
	PricingSourceFallback PricingSource = "fallback"
)

// Request is a shipping fee estimation request
type Request struct {
	OriginPin      string
	DestinationPin string
	Items          []Item
	PaymentMode    PaymentMode
}

// Validate rejects requests that cannot be priced
func (r Request) Validate() error {
	if strings.TrimSpace(r.DestinationPin) == "" {
		return shared.NewValidationError("DESTINATION_REQUIRED", "Destination postal code is required")
	}
	if strings.TrimSpace(r.OriginPin) == "" {
		return shared.NewValidationError("ORIGIN_REQUIRED", "Origin postal code is required")
	}
	if len(r.Items) == 0 {
		return shared.NewValidationError("ITEMS_REQUIRED", "At least one item is required")
	}
	for _, item := range r.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Estimate is the outcome of a shipping fee estimation
type Estimate struct {
	ShippingAvailable  bool
	Reason             string
	Fee                decimal.Decimal
	ChargeableWeightKg decimal.Decimal
	ActualWeightKg     decimal.Decimal
	VolumetricWeightKg decimal.Decimal
	Zone               Zone
	PricingSource      PricingSource
	CODAvailable       bool
}

// Unavailable builds the estimate for a destination the carrier does not serve
func Unavailable(reason string) Estimate {
	if reason == "" {
		reason = "Delivery is not available for this postal code"
	}
	return Estimate{ShippingAvailable: false, Reason: reason, Fee: decimal.Zero}
}
