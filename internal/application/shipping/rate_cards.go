package shipping

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sevenext/backend/internal/domain/shipping"
	"github.com/sevenext/backend/internal/infrastructure/config"
)

// BuildRateCards overlays configured zones on the built-in cards.
// A configured zone replaces the default card of that zone entirely.
func BuildRateCards(cfg config.RateCardConfig) (shipping.RateCards, error) {
	cards := shipping.DefaultRateCards()

	names := make([]string, 0, len(cfg.Zones))
	for name := range cfg.Zones {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		zoneCfg := cfg.Zones[name]
		zone := shipping.Zone(name)
		slabs := make([]shipping.Slab, 0, len(zoneCfg.Slabs))
		for _, s := range zoneCfg.Slabs {
			slabs = append(slabs, shipping.Slab{
				ThresholdKg: decimal.NewFromFloat(s.ThresholdKg),
				Price:       decimal.NewFromFloat(s.Price),
			})
		}
		card, err := shipping.NewRateCard(zone, slabs, decimal.NewFromFloat(zoneCfg.ExtraPerKg))
		if err != nil {
			return nil, fmt.Errorf("rate_card.%s: %w", name, err)
		}
		cards[zone] = card
	}
	return cards, nil
}
