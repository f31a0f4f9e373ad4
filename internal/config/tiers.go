package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

// LoadTierBins returns the tier -> max bins table.  The compiled-in
// defaults can be overridden per tier with TIER_BINS_<NAME> (e.g.
// TIER_BINS_GOLD=500).  An unparsable override is fatal rather than
// silently falling back, since a wrong quota either blocks a live show or
// hands out bins the seller is not paying for.
func LoadTierBins() map[model.Tier]int {
	table := make(map[model.Tier]int, len(model.DefaultTierBins))
	for tier, bins := range model.DefaultTierBins {
		key := "TIER_BINS_" + strings.ToUpper(string(tier))
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				log.Fatalf("invalid %s: %q", key, v)
			}
			bins = n
		}
		table[tier] = bins
	}
	return table
}
