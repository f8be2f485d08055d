package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/shipping"
)

// EstimateShippingRequest asks for the fee of delivering items to a postal code
type EstimateShippingRequest struct {
	OriginPin      string
	DestinationPin string
	Items          []shipping.Item
	PaymentMode    string
}

// EstimateResponse is the priced estimate
type EstimateResponse struct {
	ShippingAvailable  bool                   `json:"shipping_available"`
	Reason             string                 `json:"reason,omitempty"`
	Fee                decimal.Decimal        `json:"shipping_fee"`
	ChargeableWeightKg decimal.Decimal        `json:"chargeable_weight_kg"`
	ActualWeightKg     decimal.Decimal        `json:"actual_weight_kg"`
	VolumetricWeightKg decimal.Decimal        `json:"volumetric_weight_kg"`
	Zone               shipping.Zone          `json:"zone,omitempty"`
	PricingSource      shipping.PricingSource `json:"pricing_source,omitempty"`
	CODAvailable       bool                   `json:"cod_available"`
}

func toEstimateResponse(e shipping.Estimate) *EstimateResponse {
	return &EstimateResponse{
		ShippingAvailable:  e.ShippingAvailable,
		Reason:             e.Reason,
		Fee:                e.Fee,
		ChargeableWeightKg: e.ChargeableWeightKg,
		ActualWeightKg:     e.ActualWeightKg,
		VolumetricWeightKg: e.VolumetricWeightKg,
		Zone:               e.Zone,
		PricingSource:      e.PricingSource,
		CODAvailable:       e.CODAvailable,
	}
}
