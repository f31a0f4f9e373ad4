package show

import (
	"fmt"
	"time"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

// Session holds the full mutable state of one auction show: the bidder
// ledger plus the bin and giveaway cursors.  It is not safe for concurrent
// use on its own; Engine serializes access.
type Session struct {
	ShowID    string
	StartedAt time.Time
	Tier      model.Tier

	allocator *BinAllocator
	counter   *GiveawayCounter

	bidders    map[string]*model.BidderRecord
	order      []string // normalized ids in bin-assignment order
	lastActive string   // most recently touched bidder, "" when none
	giveaways  int      // how many giveaway entries this show has issued
}

// NewSession starts a fresh show at the given time.  The show id is derived
// from the creation time, cursors start at 1 and the ledger is empty.
func NewSession(tier model.Tier, maxBins int, now time.Time) *Session {
	return &Session{
		ShowID:    now.Format(model.ShowIDLayout),
		StartedAt: now,
		Tier:      tier,
		allocator: NewBinAllocator(maxBins),
		counter:   NewGiveawayCounter(),
		bidders:   make(map[string]*model.BidderRecord),
	}
}

// RecordTransaction is the single mutating entry point of the ledger.  For
// a previously unseen handle it allocates a bin and creates the record; for
// a known handle it appends to the existing record without touching the
// allocator.  On any error nothing is mutated: no partial record, no
// advanced cursor.
func (s *Session) RecordTransaction(rawID string, qty int, weight string, isGiveaway bool, now time.Time) (*model.BidderRecord, model.Transaction, error) {
	key, display, err := NormalizeIdentity(rawID)
	if err != nil {
		return nil, model.Transaction{}, err
	}
	if qty <= 0 {
		return nil, model.Transaction{}, ErrInvalidQuantity
	}

	rec, exists := s.bidders[key]
	if !exists {
		bin, err := s.allocator.Allocate()
		if err != nil {
			return nil, model.Transaction{}, fmt.Errorf("%w: %s tier allows %d bins", err, s.Tier, s.allocator.Max())
		}
		rec = &model.BidderRecord{
			NormalizedID: key,
			DisplayName:  display,
			Bin:          bin,
		}
		s.bidders[key] = rec
		s.order = append(s.order, key)
	}

	txn := model.Transaction{
		Bin:       rec.Bin,
		Qty:       qty,
		Weight:    weight,
		Giveaway:  s.counter.AllocateIf(isGiveaway),
		Timestamp: now,
	}
	rec.Transactions = append(rec.Transactions, txn)
	rec.TotalItems += qty
	if isGiveaway {
		s.giveaways++
	}
	s.lastActive = key
	return rec, txn, nil
}

// SetTier switches the subscription tier.  Existing over-quota bins (after
// a downgrade) stay valid; only future allocations see the new limit.
func (s *Session) SetTier(tier model.Tier, maxBins int) {
	s.Tier = tier
	s.allocator.SetMax(maxBins)
}

// Bidder returns the record for a normalized id, or nil.
func (s *Session) Bidder(key string) *model.BidderRecord { return s.bidders[key] }

// BidderCount returns how many distinct bidders the show has.
func (s *Session) BidderCount() int { return len(s.bidders) }

// TransactionCount returns the total number of ledger entries.
func (s *Session) TransactionCount() int {
	n := 0
	for _, rec := range s.bidders {
		n += len(rec.Transactions)
	}
	return n
}

// GiveawayCount returns how many giveaway entries have been issued.
func (s *Session) GiveawayCount() int { return s.giveaways }

// NextBin exposes the allocator cursor.
func (s *Session) NextBin() int { return s.allocator.Next() }

// NextGiveawayNumber exposes the giveaway cursor.
func (s *Session) NextGiveawayNumber() int { return s.counter.Next() }

// MaxBins returns the current tier quota.
func (s *Session) MaxBins() int { return s.allocator.Max() }

// Summary captures the archive row for this show, ended at the given time.
func (s *Session) Summary(now time.Time) model.ShowSummary {
	return model.ShowSummary{
		ShowID:            s.ShowID,
		StartTime:         s.StartedAt,
		EndTime:           now,
		TotalBidders:      len(s.bidders),
		TotalTransactions: s.TransactionCount(),
	}
}

// HistoryRows flattens the ledger into export rows: one row per
// transaction, bidders in bin-assignment order, transactions in arrival
// order within each bidder.
func (s *Session) HistoryRows() []model.HistoryRow {
	rows := make([]model.HistoryRow, 0, s.TransactionCount())
	for _, key := range s.order {
		rec := s.bidders[key]
		for _, t := range rec.Transactions {
			rows = append(rows, model.HistoryRow{
				Username:    rec.DisplayName,
				Bin:         rec.Bin,
				Qty:         t.Qty,
				Weight:      t.Weight,
				Giveaway:    t.IsGiveaway(),
				GiveawayNum: t.Giveaway.Serial(),
				Timestamp:   t.Timestamp,
			})
		}
	}
	return rows
}

// RebuildSession reconstructs session state from history rows, preserving
// the identity of the show being restored into (id, start time, tier).
// Rows are grouped by normalized handle in file order; allocator and
// counter cursors are re-derived by observing every row.  The whole rebuild
// fails if any row is unusable, carries a bin past the current quota, or
// contradicts an earlier row (a hand-edited file can claim one bin for two
// bidders or reissue a giveaway number), so a caller can keep its live
// session when an import goes wrong.
func RebuildSession(showID string, startedAt time.Time, tier model.Tier, maxBins int, rows []model.HistoryRow) (*Session, error) {
	s := NewSession(tier, maxBins, startedAt)
	s.ShowID = showID
	binOwner := make(map[int]string)
	giveawaySeen := make(map[int]bool)
	for i, row := range rows {
		key, display, err := NormalizeIdentity(row.Username)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if row.Qty <= 0 {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrInvalidQuantity)
		}
		rec, exists := s.bidders[key]
		if !exists {
			if row.Bin < 1 {
				return nil, fmt.Errorf("row %d: %w: bin %d", i+1, ErrConflictingImport, row.Bin)
			}
			if row.Bin > maxBins {
				return nil, fmt.Errorf("row %d: %w: bin %d, %s tier allows %d",
					i+1, ErrQuotaViolationOnImport, row.Bin, tier, maxBins)
			}
			if owner, taken := binOwner[row.Bin]; taken {
				return nil, fmt.Errorf("row %d: %w: bin %d already belongs to %s",
					i+1, ErrConflictingImport, row.Bin, owner)
			}
			rec = &model.BidderRecord{
				NormalizedID: key,
				DisplayName:  display,
				Bin:          row.Bin,
			}
			s.bidders[key] = rec
			s.order = append(s.order, key)
			binOwner[row.Bin] = display
		} else if row.Bin != rec.Bin {
			return nil, fmt.Errorf("row %d: %w: %s has bin %d but this row says %d",
				i+1, ErrConflictingImport, rec.DisplayName, rec.Bin, row.Bin)
		}
		g := model.GiveawayNumber{}
		if row.Giveaway {
			if row.GiveawayNum < 1 {
				return nil, fmt.Errorf("row %d: %w: giveaway entry without a number", i+1, ErrConflictingImport)
			}
			if giveawaySeen[row.GiveawayNum] {
				return nil, fmt.Errorf("row %d: %w: giveaway #%d issued twice",
					i+1, ErrConflictingImport, row.GiveawayNum)
			}
			giveawaySeen[row.GiveawayNum] = true
			g = model.GiveawayNumber{Valid: true, N: row.GiveawayNum}
			s.giveaways++
		}
		rec.Transactions = append(rec.Transactions, model.Transaction{
			Bin:       rec.Bin,
			Qty:       row.Qty,
			Weight:    row.Weight,
			Giveaway:  g,
			Timestamp: row.Timestamp,
		})
		rec.TotalItems += row.Qty

		s.allocator.Observe(row.Bin)
		if row.Giveaway {
			s.counter.Observe(row.GiveawayNum)
		}
	}
	return s, nil
}
