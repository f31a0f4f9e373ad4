package show

import "github.com/iliyamo/auction-bin-tracker/internal/model"

// GiveawayCounter issues the global giveaway sequence.  Unlike bins the
// sequence spans the whole session regardless of which bidder the entry
// belongs to, and it has no quota.
type GiveawayCounter struct {
	next int
}

// NewGiveawayCounter returns a counter with its cursor at 1.
func NewGiveawayCounter() *GiveawayCounter { return &GiveawayCounter{next: 1} }

// AllocateIf hands out the next number when isGiveaway is true; otherwise
// it returns the invalid (not-a-giveaway) value and leaves the cursor alone.
func (g *GiveawayCounter) AllocateIf(isGiveaway bool) model.GiveawayNumber {
	if !isGiveaway {
		return model.GiveawayNumber{}
	}
	n := g.next
	g.next++
	return model.GiveawayNumber{Valid: true, N: n}
}

// Observe advances the cursor past an externally supplied number, mirroring
// BinAllocator.Observe for import reconciliation.
func (g *GiveawayCounter) Observe(n int) {
	if n >= g.next {
		g.next = n + 1
	}
}

// Next exposes the cursor.
func (g *GiveawayCounter) Next() int { return g.next }
