package shipping

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// PaymentMode is how the consignee pays
type PaymentMode string

const (
	PaymentModePrepaid PaymentMode = "Pre-paid"
	PaymentModeCOD     PaymentMode = "COD"
)

// ParsePaymentMode maps a raw value to a PaymentMode, defaulting to prepaid
func ParsePaymentMode(s string) PaymentMode {
	if PaymentMode(s) == PaymentModeCOD || s == "cod" {
		return PaymentModeCOD
	}
	return PaymentModePrepaid
}

// Serviceability is the carrier's answer for a destination postal code
type Serviceability struct {
	Serviceable  bool
	Reason       string
	CODAvailable bool
}

// RateQuery asks the carrier for a live price
type RateQuery struct {
	OriginPin             string
	DestinationPin        string
	ChargeableWeightGrams int64
	PaymentMode           PaymentMode
	Zone                  Zone
}

// Carrier is the external courier service
type Carrier interface {
	// CheckServiceability reports whether the carrier delivers to pin
	CheckServiceability(ctx context.Context, pin string) (Serviceability, error)
	// QuoteRate returns the total charge for the query
	QuoteRate(ctx context.Context, query RateQuery) (decimal.Decimal, error)
}

// Carrier errors
var (
	ErrCarrierUnavailable   = errors.New("carrier: service unavailable")
	ErrCarrierRequestFailed = errors.New("carrier: request failed")
	ErrCarrierBadResponse   = errors.New("carrier: unexpected response")
)
