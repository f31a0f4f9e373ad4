package show

// BinAllocator issues monotonically increasing bin numbers bounded by the
// tier quota.  Numbers start at 1 and are never reused or skipped within a
// session; the only way a number is withheld is a quota rejection, which
// leaves the cursor untouched.
type BinAllocator struct {
	next int
	max  int
}

// NewBinAllocator returns an allocator with its cursor at 1.
func NewBinAllocator(maxBins int) *BinAllocator {
	return &BinAllocator{next: 1, max: maxBins}
}

// Allocate returns the next bin number and advances the cursor.  When the
// quota is exhausted it fails with ErrQuotaExceeded and changes nothing.
func (a *BinAllocator) Allocate() (int, error) {
	if a.next > a.max {
		return 0, ErrQuotaExceeded
	}
	n := a.next
	a.next++
	return n, nil
}

// Observe advances the cursor past an externally supplied bin number.  Used
// while rebuilding a session from a history file; quota is not checked here
// because the import validates bins against the tier limit as a whole.
func (a *BinAllocator) Observe(bin int) {
	if bin >= a.next {
		a.next = bin + 1
	}
}

// SetMax changes the quota.  Lowering it never invalidates bins that are
// already out; it only blocks further allocation once the cursor is past
// the new limit.
func (a *BinAllocator) SetMax(maxBins int) { a.max = maxBins }

// Next exposes the cursor (the bin the next new bidder would receive).
func (a *BinAllocator) Next() int { return a.next }

// Max returns the current quota.
func (a *BinAllocator) Max() int { return a.max }
