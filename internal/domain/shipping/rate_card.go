package shipping

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Slab prices any weight at or below its threshold
type Slab struct {
	ThresholdKg decimal.Decimal `json:"threshold_kg" mapstructure:"threshold_kg"`
	Price       decimal.Decimal `json:"price" mapstructure:"price"`
}

// RateCard is the static slab table of one zone
type RateCard struct {
	zone       Zone
	slabs      []Slab
	extraPerKg decimal.Decimal
}

// NewRateCard creates a rate card, requiring at least one slab with strictly increasing thresholds
func NewRateCard(zone Zone, slabs []Slab, extraPerKg decimal.Decimal) (*RateCard, error) {
	if !zone.IsValid() {
		return nil, fmt.Errorf("rate card: unknown zone %q", zone)
	}
	if len(slabs) == 0 {
		return nil, fmt.Errorf("rate card %s: at least one slab is required", zone)
	}
	if extraPerKg.IsNegative() {
		return nil, fmt.Errorf("rate card %s: extra per kg cannot be negative", zone)
	}
	for i, s := range slabs {
		if !s.ThresholdKg.IsPositive() {
			return nil, fmt.Errorf("rate card %s: slab %d threshold must be positive", zone, i)
		}
		if s.Price.IsNegative() {
			return nil, fmt.Errorf("rate card %s: slab %d price cannot be negative", zone, i)
		}
		if i > 0 && !s.ThresholdKg.GreaterThan(slabs[i-1].ThresholdKg) {
			return nil, fmt.Errorf("rate card %s: slab thresholds must be strictly increasing", zone)
		}
	}

	copied := make([]Slab, len(slabs))
	copy(copied, slabs)
	return &RateCard{zone: zone, slabs: copied, extraPerKg: extraPerKg}, nil
}

// Zone returns the zone the card prices
func (c *RateCard) Zone() Zone {
	return c.zone
}

// Slabs returns a copy of the slabs
func (c *RateCard) Slabs() []Slab {
	result := make([]Slab, len(c.slabs))
	copy(result, c.slabs)
	return result
}

// ExtraPerKg returns the surcharge per kilogram above the last slab
func (c *RateCard) ExtraPerKg() decimal.Decimal {
	return c.extraPerKg
}

// Price returns the first slab price whose threshold covers weight. Heavier parcels
// pay the last slab price plus extraPerKg for every started kilogram above it.
func (c *RateCard) Price(weightKg decimal.Decimal) decimal.Decimal {
	for _, s := range c.slabs {
		if s.ThresholdKg.GreaterThanOrEqual(weightKg) {
			return s.Price
		}
	}

	last := c.slabs[len(c.slabs)-1]
	extraKg := weightKg.Sub(last.ThresholdKg).Ceil()
	return last.Price.Add(extraKg.Mul(c.extraPerKg))
}

// RateCards holds one card per zone
type RateCards map[Zone]*RateCard

// For returns the card of a zone, falling back to national when the zone has none
func (r RateCards) For(zone Zone) (*RateCard, bool) {
	if card, ok := r[zone]; ok {
		return card, true
	}
	card, ok := r[ZoneNational]
	return card, ok
}

// SlabsFromFloats builds slabs from threshold/price pairs
func SlabsFromFloats(pairs ...[2]float64) []Slab {
	slabs := make([]Slab, 0, len(pairs))
	for _, p := range pairs {
		slabs = append(slabs, Slab{
			ThresholdKg: decimal.NewFromFloat(p[0]),
			Price:       decimal.NewFromFloat(p[1]),
		})
	}
	return slabs
}

// DefaultRateCards returns the built-in fallback tables
func DefaultRateCards() RateCards {
	mk := func(zone Zone, extra int64, pairs ...[2]float64) *RateCard {
		card, err := NewRateCard(zone, SlabsFromFloats(pairs...), decimal.NewFromInt(extra))
		if err != nil {
			panic(err)
		}
		return card
	}
	return RateCards{
		ZoneLocal:    mk(ZoneLocal, 12, [2]float64{0.5, 45}, [2]float64{1, 55}, [2]float64{2, 70}, [2]float64{5, 95}, [2]float64{10, 120}),
		ZoneZonal:    mk(ZoneZonal, 16, [2]float64{0.5, 55}, [2]float64{1, 70}, [2]float64{2, 90}, [2]float64{5, 125}, [2]float64{10, 165}),
		ZoneNational: mk(ZoneNational, 22, [2]float64{0.5, 70}, [2]float64{1, 90}, [2]float64{2, 120}, [2]float64{5, 170}, [2]float64{10, 230}),
	}
}
