package model

import "strings"

// Tier is a subscription level.  Each tier bounds the number of storage
// bins a seller may hand out during a single show.
type Tier string

const (
	TierTrial  Tier = "Trial"
	TierBronze Tier = "Bronze"
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
)

// DefaultTierBins maps each tier to its maximum number of bins.  The
// values can be overridden through configuration; see config.LoadTierBins.
var DefaultTierBins = map[Tier]int{
	TierTrial:  150,
	TierBronze: 50,
	TierSilver: 150,
	TierGold:   300,
}

// ParseTier normalizes a tier name ("gold", "GOLD", "Gold" are all
// accepted) and reports whether it is one of the known tiers.
func ParseTier(s string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trial":
		return TierTrial, true
	case "bronze":
		return TierBronze, true
	case "silver":
		return TierSilver, true
	case "gold":
		return TierGold, true
	}
	return "", false
}
