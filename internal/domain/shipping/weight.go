package shipping

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/shared"
)

// VolumetricDivisor converts cubic centimetres to volumetric kilograms
var VolumetricDivisor = decimal.NewFromInt(5000)

// Per-item upper bounds; larger values cannot be a real parcel and would overflow the gram conversion
const (
	MaxItemQuantity = 10000
	MaxItemWeightKg = 1000
	MaxDimensionCm  = 500
)

var (
	halfKg = decimal.RequireFromString("0.5")
	oneKg  = decimal.NewFromInt(1)
)

// Item is one parcel line of a shipping request
type Item struct {
	WeightKg  decimal.Decimal
	LengthCm  decimal.Decimal
	BreadthCm decimal.Decimal
	HeightCm  decimal.Decimal
	Quantity  int
}

// Validate checks the item has a positive, bounded quantity and measures within range
func (i Item) Validate() error {
	if i.Quantity <= 0 {
		return shared.NewValidationError("INVALID_ITEM", "Item quantity must be greater than zero")
	}
	if i.Quantity > MaxItemQuantity {
		return shared.NewValidationError("INVALID_ITEM", fmt.Sprintf("Item quantity cannot exceed %d", MaxItemQuantity))
	}
	measures := []struct {
		name  string
		value decimal.Decimal
		max   int64
		unit  string
	}{
		{"weight", i.WeightKg, MaxItemWeightKg, "kg"},
		{"length", i.LengthCm, MaxDimensionCm, "cm"},
		{"breadth", i.BreadthCm, MaxDimensionCm, "cm"},
		{"height", i.HeightCm, MaxDimensionCm, "cm"},
	}
	for _, m := range measures {
		if m.value.IsNegative() {
			return shared.NewValidationError("INVALID_ITEM", fmt.Sprintf("Item %s cannot be negative", m.name))
		}
		if m.value.GreaterThan(decimal.NewFromInt(m.max)) {
			return shared.NewValidationError("INVALID_ITEM", fmt.Sprintf("Item %s cannot exceed %d%s", m.name, m.max, m.unit))
		}
	}
	return nil
}

// ActualWeight returns weight × quantity
func (i Item) ActualWeight() decimal.Decimal {
	return i.WeightKg.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// VolumetricWeight returns L×B×H / 5000 × quantity
func (i Item) VolumetricWeight() decimal.Decimal {
	return i.LengthCm.Mul(i.BreadthCm).Mul(i.HeightCm).
		Div(VolumetricDivisor).
		Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Weights holds the aggregated weights of a request
type Weights struct {
	Actual     decimal.Decimal
	Volumetric decimal.Decimal
	Chargeable decimal.Decimal
}

// AggregateWeights sums actual and volumetric weight across items and derives the chargeable weight
func AggregateWeights(items []Item) Weights {
	w := Weights{Actual: decimal.Zero, Volumetric: decimal.Zero}
	for _, item := range items {
		w.Actual = w.Actual.Add(item.ActualWeight())
		w.Volumetric = w.Volumetric.Add(item.VolumetricWeight())
	}
	w.Chargeable = ChargeableWeight(decimal.Max(w.Actual, w.Volumetric))
	return w
}

// ChargeableWeight applies carrier billing rounding: up to 0.5kg bills 0.5,
// up to 1kg bills 1, anything heavier rounds up to the next whole kilogram.
func ChargeableWeight(raw decimal.Decimal) decimal.Decimal {
	switch {
	case raw.LessThanOrEqual(halfKg):
		return halfKg
	case raw.LessThanOrEqual(oneKg):
		return oneKg
	default:
		return raw.Ceil()
	}
}

// Grams converts kilograms to whole grams for the carrier API
func Grams(kg decimal.Decimal) int64 {
	return kg.Mul(decimal.NewFromInt(1000)).Ceil().IntPart()
}
