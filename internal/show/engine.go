package show

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/auction-bin-tracker/internal/bus"
	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

// Engine owns the live Session.  All mutation is serialized through its
// write lock (the HTTP handlers play the role of UI actions); read-only
// projections take the read lock.  The latest-assignment string is
// published as an atomically replaced immutable value so websocket and HTTP
// readers never observe a torn write and never contend with the ledger.
type Engine struct {
	mu      sync.RWMutex
	session *Session

	latest atomic.Value // string
	bus    *bus.Bus
	clock  func() time.Time
}

// Options configures a new engine.
type Options struct {
	Tier    model.Tier
	MaxBins int
	Clock   func() time.Time // defaults to time.Now
}

// NewEngine starts an engine with a fresh session.
func NewEngine(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	e := &Engine{clock: opts.Clock}
	e.session = NewSession(opts.Tier, opts.MaxBins, opts.Clock())
	e.latest.Store(LatestPlaceholder)
	return e
}

// AttachBus wires the fan-out bus.  The engine publishes an event after
// every successful mutation; without a bus mutations still work (tests run
// the engine bare).
func (e *Engine) AttachBus(b *bus.Bus) { e.bus = b }

// Refresh is the synchronous bus hook: it swaps in the new
// latest-assignment snapshot.  Register it as the bus's refresh callback.
func (e *Engine) Refresh(ev bus.Event) {
	if ev.Latest != "" {
		e.latest.Store(ev.Latest)
	}
}

// Latest returns the current latest-assignment string.  Lock-free; safe
// from any goroutine.
func (e *Engine) Latest() string { return e.latest.Load().(string) }

func (e *Engine) publish(ev bus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	} else if ev.Latest != "" {
		e.latest.Store(ev.Latest)
	}
}

// RecordResult is what a successful Record hands back to the caller.
type RecordResult struct {
	DisplayName string
	Bin         int
	Giveaway    model.GiveawayNumber
	TotalItems  int
	Latest      string
}

// Record validates and applies one transaction.  qty is the raw user input
// (empty means 1).  On success the state-change event is published before
// the lock is released so event order matches ledger order.
func (e *Engine) Record(rawID, qty, weight string, isGiveaway bool) (RecordResult, error) {
	n, err := ParseQuantity(qty)
	if err != nil {
		return RecordResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	rec, txn, err := e.session.RecordTransaction(rawID, n, weight, isGiveaway, e.clock())
	if err != nil {
		return RecordResult{}, err
	}
	res := RecordResult{
		DisplayName: rec.DisplayName,
		Bin:         rec.Bin,
		Giveaway:    txn.Giveaway,
		TotalItems:  rec.TotalItems,
		Latest:      e.session.LatestAssignment(),
	}
	e.publish(bus.Event{
		Kind:        bus.KindTransaction,
		ShowID:      e.session.ShowID,
		BidderID:    rec.NormalizedID,
		DisplayName: rec.DisplayName,
		Bin:         rec.Bin,
		Latest:      res.Latest,
	})
	return res, nil
}

// Import replaces the live session with one rebuilt from history rows.
// The candidate session is built and fully validated first; the live one is
// only swapped out after validation succeeds, so a bad file leaves the show
// untouched.  Returns the number of bidders restored.
func (e *Engine) Import(rows []model.HistoryRow) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.session
	next, err := RebuildSession(cur.ShowID, cur.StartedAt, cur.Tier, cur.MaxBins(), rows)
	if err != nil {
		return 0, err
	}
	e.session = next
	e.publish(bus.Event{Kind: bus.KindImport, ShowID: next.ShowID})
	return next.BidderCount(), nil
}

// Clear archives the current show and starts a new one.  The archive
// callback runs under the lock, before any state is dropped; if it fails
// the show is left exactly as it was.  The callback is skipped for a show
// that never saw a bidder.  Returns the new show id.
func (e *Engine) Clear(archive func(model.ShowSummary) error) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if archive != nil && e.session.BidderCount() > 0 {
		if err := archive(e.session.Summary(e.clock())); err != nil {
			return "", err
		}
	}
	e.session = NewSession(e.session.Tier, e.session.MaxBins(), e.clock())
	if e.bus != nil {
		e.bus.ResetWarnings()
	}
	e.publish(bus.Event{
		Kind:   bus.KindReset,
		ShowID: e.session.ShowID,
		Latest: LatestPlaceholder,
	})
	return e.session.ShowID, nil
}

// SetTier switches the subscription tier for future allocations.
func (e *Engine) SetTier(tier model.Tier, maxBins int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.SetTier(tier, maxBins)
}

// ExportSnapshot returns the show id together with its export rows from
// a single locked read, so a concurrent Clear cannot slip between the
// two and pair one show's rows with another show's file.
func (e *Engine) ExportSnapshot() (string, []model.HistoryRow) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.ShowID, e.session.HistoryRows()
}

// Info is the show header: identity, tier and usage.
type Info struct {
	ShowID        string `json:"show_id"`
	StartTime     string `json:"start_time"`
	Tier          string `json:"tier"`
	MaxBins       int    `json:"max_bins"`
	UsedBins      int    `json:"used_bins"`
	Transactions  int    `json:"transactions"`
	GiveawayCount int    `json:"giveaway_count"`
}

// Info returns the current show header.
func (e *Engine) Info() Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Info{
		ShowID:        e.session.ShowID,
		StartTime:     e.session.StartedAt.Format(model.TimestampLayout),
		Tier:          string(e.session.Tier),
		MaxBins:       e.session.MaxBins(),
		UsedBins:      e.session.BidderCount(),
		Transactions:  e.session.TransactionCount(),
		GiveawayCount: e.session.GiveawayCount(),
	}
}

// TreeView returns the grouped transaction listing.
func (e *Engine) TreeView(order string) []BidderGroup {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.TreeView(order)
}

// Search looks up bidders and transactions.
func (e *Engine) Search(q string) SearchResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Search(q)
}

// BinDisplay returns the live bin board.
func (e *Engine) BinDisplay() []BinEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.BinDisplay()
}

// Stats returns the totals line.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Stats()
}

// TopBuyers returns the ranked buyer board.
func (e *Engine) TopBuyers(n int) []TopBuyer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.TopBuyers(n)
}

// SellRate returns the pace calculation.
func (e *Engine) SellRate() (SellRate, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.SellRate()
}

// GiveawayCount returns how many giveaway entries this show has issued.
func (e *Engine) GiveawayCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.GiveawayCount()
}
