package show

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

// Everything in this file is a derived projection over the ledger.  None of
// these methods mutate session state or advance an allocator cursor.

// BinEntry is one line of the bin display.
type BinEntry struct {
	Bin         int    `json:"bin"`
	DisplayName string `json:"username"`
}

// BinDisplay lists assignments the way a seller scans them mid-show: the
// most recently touched bidder first, then the rest by descending bin.
func (s *Session) BinDisplay() []BinEntry {
	out := make([]BinEntry, 0, len(s.bidders))
	if rec, ok := s.bidders[s.lastActive]; ok {
		out = append(out, BinEntry{Bin: rec.Bin, DisplayName: rec.DisplayName})
	}
	rest := make([]*model.BidderRecord, 0, len(s.bidders))
	for key, rec := range s.bidders {
		if key == s.lastActive {
			continue
		}
		rest = append(rest, rec)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Bin > rest[j].Bin })
	for _, rec := range rest {
		out = append(out, BinEntry{Bin: rec.Bin, DisplayName: rec.DisplayName})
	}
	return out
}

// LatestAssignment renders the broadcast string for the last touched
// bidder, or the waiting placeholder when the show is empty.
func (s *Session) LatestAssignment() string {
	rec, ok := s.bidders[s.lastActive]
	if !ok {
		return LatestPlaceholder
	}
	return fmt.Sprintf("Username: %s | Bin: %d", rec.DisplayName, rec.Bin)
}

// LatestPlaceholder is broadcast before the first bidder and after a reset.
const LatestPlaceholder = "Waiting for bidder..."

// TransactionView is a single ledger entry formatted for display.
type TransactionView struct {
	Qty         int    `json:"qty"`
	Weight      string `json:"weight"`
	Giveaway    bool   `json:"giveaway"`
	GiveawayNum int    `json:"giveaway_num"`
	Timestamp   string `json:"timestamp"`
}

// BidderGroup collects one bidder's transactions for the tree view.
type BidderGroup struct {
	DisplayName  string            `json:"username"`
	Bin          int               `json:"bin"`
	TotalItems   int               `json:"total_items"`
	Transactions []TransactionView `json:"transactions"`
}

// TreeView returns all transactions sorted by timestamp (descending unless
// order is "asc"), grouped per bidder.  Groups appear in the order of their
// first transaction under the chosen sort; transactions inside a group
// follow the same sort.  Equal timestamps keep arrival order (the sort is
// stable), matching the coarse second-resolution clock.
func (s *Session) TreeView(order string) []BidderGroup {
	type flat struct {
		key string
		rec *model.BidderRecord
		txn model.Transaction
	}
	all := make([]flat, 0, s.TransactionCount())
	for _, key := range s.order {
		rec := s.bidders[key]
		for _, t := range rec.Transactions {
			all = append(all, flat{key: key, rec: rec, txn: t})
		}
	}
	desc := order != "asc"
	sort.SliceStable(all, func(i, j int) bool {
		if desc {
			return all[i].txn.Timestamp.After(all[j].txn.Timestamp)
		}
		return all[i].txn.Timestamp.Before(all[j].txn.Timestamp)
	})

	index := make(map[string]int)
	groups := make([]BidderGroup, 0, len(s.bidders))
	for _, f := range all {
		i, ok := index[f.key]
		if !ok {
			i = len(groups)
			index[f.key] = i
			groups = append(groups, BidderGroup{
				DisplayName: f.rec.DisplayName,
				Bin:         f.rec.Bin,
				TotalItems:  f.rec.TotalItems,
			})
		}
		groups[i].Transactions = append(groups[i].Transactions, TransactionView{
			Qty:         f.txn.Qty,
			Weight:      f.txn.Weight,
			Giveaway:    f.txn.IsGiveaway(),
			GiveawayNum: f.txn.Giveaway.Serial(),
			Timestamp:   f.txn.Timestamp.Format(model.TimestampLayout),
		})
	}
	return groups
}

// SearchMatch is one transaction line matched by a search, annotated with
// its owning bidder.
type SearchMatch struct {
	DisplayName string `json:"username"`
	Bin         int    `json:"bin"`
	Qty         int    `json:"qty"`
	Weight      string `json:"weight"`
	GiveawayNum int    `json:"giveaway_num"`
	Timestamp   string `json:"timestamp"`
}

// String renders the match the way the search pane prints it.
func (m SearchMatch) String() string {
	return fmt.Sprintf("%s | Bin %d | %dx | %s | # %d | %s",
		m.DisplayName, m.Bin, m.Qty, m.Weight, m.GiveawayNum, m.Timestamp)
}

// SearchResult carries either an exact bidder hit or matching lines.
type SearchResult struct {
	Exact   *BidderGroup  `json:"exact,omitempty"`
	Matches []SearchMatch `json:"matches"`
}

// Search performs a case-insensitive lookup.  An exact normalized-handle
// hit returns the bidder's summary; otherwise every transaction whose
// handle, display name, quantity or weight class contains the query is
// returned.
func (s *Session) Search(query string) SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	res := SearchResult{Matches: []SearchMatch{}}
	if q == "" {
		return res
	}
	if rec, ok := s.bidders[q]; ok {
		res.Exact = &BidderGroup{
			DisplayName: rec.DisplayName,
			Bin:         rec.Bin,
			TotalItems:  rec.TotalItems,
		}
		return res
	}
	for _, key := range s.order {
		rec := s.bidders[key]
		for _, t := range rec.Transactions {
			if strings.Contains(key, q) ||
				strings.Contains(strings.ToLower(rec.DisplayName), q) ||
				strings.Contains(strconv.Itoa(t.Qty), q) ||
				strings.Contains(strings.ToLower(t.Weight), q) {
				res.Matches = append(res.Matches, SearchMatch{
					DisplayName: rec.DisplayName,
					Bin:         rec.Bin,
					Qty:         t.Qty,
					Weight:      t.Weight,
					GiveawayNum: t.Giveaway.Serial(),
					Timestamp:   t.Timestamp.Format(model.TimestampLayout),
				})
			}
		}
	}
	return res
}

// Stats summarizes the show so far.
type Stats struct {
	TotalItems   int     `json:"total_items"`
	UniqueBuyers int     `json:"unique_buyers"`
	AvgItems     float64 `json:"avg_items"`
	Text         string  `json:"text"`
}

// Stats computes the totals line shown in the analytics pane.
func (s *Session) Stats() Stats {
	st := Stats{UniqueBuyers: len(s.bidders)}
	for _, rec := range s.bidders {
		st.TotalItems += rec.TotalItems
	}
	if st.UniqueBuyers > 0 {
		// one decimal, same rounding the analytics pane always showed
		st.AvgItems = float64(int(float64(st.TotalItems)/float64(st.UniqueBuyers)*10+0.5)) / 10
	}
	st.Text = fmt.Sprintf("Sold %d items to %d buyers, avg %.1f items each",
		st.TotalItems, st.UniqueBuyers, st.AvgItems)
	return st
}

// TopBuyer is one entry of the top-buyers board.
type TopBuyer struct {
	DisplayName string `json:"username"`
	TotalItems  int    `json:"total_items"`
}

// TopBuyers returns up to n buyers ranked by total items, ties broken by
// bin number so the board is stable between refreshes.
func (s *Session) TopBuyers(n int) []TopBuyer {
	recs := make([]*model.BidderRecord, 0, len(s.bidders))
	for _, rec := range s.bidders {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].TotalItems != recs[j].TotalItems {
			return recs[i].TotalItems > recs[j].TotalItems
		}
		return recs[i].Bin < recs[j].Bin
	})
	if len(recs) > n {
		recs = recs[:n]
	}
	out := make([]TopBuyer, len(recs))
	for i, rec := range recs {
		out[i] = TopBuyer{DisplayName: rec.DisplayName, TotalItems: rec.TotalItems}
	}
	return out
}

// SellRate is the average pace of the show with projections to fixed
// show lengths.
type SellRate struct {
	MeanSeconds float64 `json:"mean_seconds"`
	TwoHour     int     `json:"two_hour_estimate"`
	ThreeHour   int     `json:"three_hour_estimate"`
}

// SellRate collects every transaction timestamp, sorts them and averages
// the consecutive deltas.  Projections divide the show length by that mean
// and floor the result; a zero mean (all sales in the same second) reports
// 0 instead of dividing by zero.  Fails with ErrInsufficientData below two
// transactions.
func (s *Session) SellRate() (SellRate, error) {
	var stamps []time.Time
	for _, rec := range s.bidders {
		for _, t := range rec.Transactions {
			stamps = append(stamps, t.Timestamp)
		}
	}
	if len(stamps) < 2 {
		return SellRate{}, ErrInsufficientData
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	var total float64
	for i := 1; i < len(stamps); i++ {
		total += stamps[i].Sub(stamps[i-1]).Seconds()
	}
	mean := total / float64(len(stamps)-1)
	sr := SellRate{MeanSeconds: mean}
	if mean > 0 {
		sr.TwoHour = int(2 * 3600 / mean)
		sr.ThreeHour = int(3 * 3600 / mean)
	}
	return sr, nil
}

// Text renders the sell rate as the sentence shown to the seller.
func (r SellRate) Text() string {
	secs := int(r.MeanSeconds)
	minutes, seconds := secs/60, secs%60
	pace := fmt.Sprintf("%d sec", seconds)
	if minutes > 0 {
		pace = fmt.Sprintf("%d min %d sec", minutes, seconds)
	}
	return fmt.Sprintf("Your sellers' current time per sale is %s. "+
		"At this sell rate you're expected to sell a total of %d items "+
		"for a 2-hour show or %d items for a 3-hour show.",
		pace, r.TwoHour, r.ThreeHour)
}
