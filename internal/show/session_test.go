package show

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

var testStart = time.Date(2025, 1, 31, 14, 15, 3, 0, time.UTC)

func newTestSession(maxBins int) *Session {
	return NewSession(model.TierGold, maxBins, testStart)
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity("")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "empty input means one item")

	n, err = ParseQuantity(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	for _, bad := range []string{"0", "-3", "abc", "1.5"} {
		_, err := ParseQuantity(bad)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "input %q", bad)
	}
}

func TestNormalizeIdentity(t *testing.T) {
	key, display, err := NormalizeIdentity("  GlamBuyer22 ")
	require.NoError(t, err)
	assert.Equal(t, "glambuyer22", key)
	assert.Equal(t, "GlamBuyer22", display)

	_, _, err = NormalizeIdentity("   ")
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestRecordTransactionMergesCaseInsensitive(t *testing.T) {
	s := newTestSession(150)

	rec, txn, err := s.RecordTransaction("GlamBuyer22", 1, "M", false, testStart)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Bin)
	assert.Equal(t, "GlamBuyer22", rec.DisplayName)
	assert.False(t, txn.Giveaway.Valid)

	rec2, _, err := s.RecordTransaction("glambuyer22", 2, "L", false, testStart.Add(time.Minute))
	require.NoError(t, err)
	assert.Same(t, rec, rec2, "same handle must hit the same record")
	assert.Equal(t, 1, rec2.Bin, "no second bin for a known bidder")
	assert.Equal(t, "GlamBuyer22", rec2.DisplayName, "first-seen casing wins")
	assert.Equal(t, 3, rec2.TotalItems)
	assert.Len(t, rec2.Transactions, 2)
	assert.Equal(t, 1, s.BidderCount())
	assert.Equal(t, 2, s.NextBin(), "cursor advanced exactly once")
}

func TestRecordTransactionQuota(t *testing.T) {
	s := newTestSession(2)

	_, _, err := s.RecordTransaction("a", 1, "", false, testStart)
	require.NoError(t, err)
	_, _, err = s.RecordTransaction("b", 1, "", false, testStart)
	require.NoError(t, err)

	_, _, err = s.RecordTransaction("c", 1, "", false, testStart)
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "Gold tier allows 2 bins")

	// rejection leaves everything untouched
	assert.Equal(t, 2, s.BidderCount())
	assert.Equal(t, 3, s.NextBin())
	assert.Equal(t, 2, s.TransactionCount())

	// existing bidders keep transacting at the cap
	rec, _, err := s.RecordTransaction("B", 4, "", false, testStart)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Bin)
	assert.Equal(t, 5, rec.TotalItems)
}

func TestGiveawayNumbersInterleave(t *testing.T) {
	s := newTestSession(150)

	_, t1, err := s.RecordTransaction("a", 1, "", true, testStart)
	require.NoError(t, err)
	_, t2, err := s.RecordTransaction("b", 1, "", false, testStart)
	require.NoError(t, err)
	_, t3, err := s.RecordTransaction("a", 1, "", true, testStart)
	require.NoError(t, err)

	assert.Equal(t, 1, t1.Giveaway.Serial())
	assert.False(t, t2.Giveaway.Valid)
	assert.Equal(t, 0, t2.Giveaway.Serial())
	assert.Equal(t, 2, t3.Giveaway.Serial(), "sequence is global, not per bidder")
	assert.Equal(t, 2, s.GiveawayCount())
	assert.Equal(t, 3, s.NextGiveawayNumber())
}

func TestBinsAreDense(t *testing.T) {
	s := newTestSession(150)
	names := []string{"a", "b", "c", "d", "e"}
	for i, name := range names {
		rec, _, err := s.RecordTransaction(name, 1, "", false, testStart)
		require.NoError(t, err)
		assert.Equal(t, i+1, rec.Bin)
	}
}

func TestRecordTransactionRejectsBadInput(t *testing.T) {
	s := newTestSession(150)

	_, _, err := s.RecordTransaction("   ", 1, "", false, testStart)
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, _, err = s.RecordTransaction("a", 0, "", false, testStart)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, 0, s.BidderCount())
	assert.Equal(t, 1, s.NextBin())
}

func TestSetTierGrandfathersExistingBins(t *testing.T) {
	s := newTestSession(150)
	for _, name := range []string{"a", "b", "c"} {
		_, _, err := s.RecordTransaction(name, 1, "", false, testStart)
		require.NoError(t, err)
	}

	// downgrade below the bins already handed out
	s.SetTier(model.TierBronze, 2)
	assert.Equal(t, model.TierBronze, s.Tier)

	// known bidders, including those over the new cap, keep working
	rec, _, err := s.RecordTransaction("c", 1, "", false, testStart)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Bin)

	// new bidders are blocked because the cursor is past the new limit
	_, _, err = s.RecordTransaction("d", 1, "", false, testStart)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestHistoryRowsOrdering(t *testing.T) {
	s := newTestSession(150)
	_, _, err := s.RecordTransaction("Bob", 1, "M", false, testStart)
	require.NoError(t, err)
	_, _, err = s.RecordTransaction("Alice", 2, "", true, testStart.Add(time.Second))
	require.NoError(t, err)
	_, _, err = s.RecordTransaction("bob", 3, "L", false, testStart.Add(2*time.Second))
	require.NoError(t, err)

	rows := s.HistoryRows()
	require.Len(t, rows, 3)
	// bidders in bin order, transactions in arrival order within a bidder
	assert.Equal(t, "Bob", rows[0].Username)
	assert.Equal(t, 1, rows[0].Qty)
	assert.Equal(t, "Bob", rows[1].Username)
	assert.Equal(t, 3, rows[1].Qty)
	assert.Equal(t, "Alice", rows[2].Username)
	assert.True(t, rows[2].Giveaway)
	assert.Equal(t, 1, rows[2].GiveawayNum)
}

func TestRebuildSessionRestoresCursors(t *testing.T) {
	src := newTestSession(150)
	_, _, err := src.RecordTransaction("Bob", 2, "M", true, testStart)
	require.NoError(t, err)
	_, _, err = src.RecordTransaction("Alice", 1, "", false, testStart.Add(time.Second))
	require.NoError(t, err)
	_, _, err = src.RecordTransaction("bob", 1, "", true, testStart.Add(2*time.Second))
	require.NoError(t, err)

	got, err := RebuildSession(src.ShowID, src.StartedAt, src.Tier, src.MaxBins(), src.HistoryRows())
	require.NoError(t, err)

	assert.Equal(t, src.ShowID, got.ShowID)
	assert.Equal(t, src.BidderCount(), got.BidderCount())
	assert.Equal(t, src.TransactionCount(), got.TransactionCount())
	assert.Equal(t, src.GiveawayCount(), got.GiveawayCount())
	assert.Equal(t, src.NextBin(), got.NextBin(), "bin cursor continues past restored bins")
	assert.Equal(t, src.NextGiveawayNumber(), got.NextGiveawayNumber())

	bob := got.Bidder("bob")
	require.NotNil(t, bob)
	assert.Equal(t, "Bob", bob.DisplayName)
	assert.Equal(t, 1, bob.Bin)
	assert.Equal(t, 3, bob.TotalItems)

	// the restored session keeps allocating where the old one stopped
	rec, _, err := got.RecordTransaction("Carol", 1, "", false, testStart.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Bin)
}

func TestRebuildSessionRejectsBadRows(t *testing.T) {
	rows := []model.HistoryRow{
		{Username: "a", Bin: 1, Qty: 1, Timestamp: testStart},
		{Username: "  ", Bin: 2, Qty: 1, Timestamp: testStart},
	}
	_, err := RebuildSession("20250131_141503", testStart, model.TierGold, 300, rows)
	require.ErrorIs(t, err, ErrInvalidIdentity)
	assert.Contains(t, err.Error(), "row 2")
}

func TestRebuildSessionRejectsOverQuotaBin(t *testing.T) {
	rows := []model.HistoryRow{
		{Username: "a", Bin: 51, Qty: 1, Timestamp: testStart},
	}
	_, err := RebuildSession("20250131_141503", testStart, model.TierBronze, 50, rows)
	require.ErrorIs(t, err, ErrQuotaViolationOnImport)
}

func TestRebuildSessionRejectsConflictingRows(t *testing.T) {
	cases := []struct {
		name string
		rows []model.HistoryRow
		want string
	}{
		{
			name: "bin claimed by two bidders",
			rows: []model.HistoryRow{
				{Username: "Bob", Bin: 1, Qty: 1, Timestamp: testStart},
				{Username: "Alice", Bin: 1, Qty: 2, Timestamp: testStart.Add(time.Second)},
			},
			want: "row 2",
		},
		{
			name: "bidder spread over two bins",
			rows: []model.HistoryRow{
				{Username: "Bob", Bin: 1, Qty: 1, Timestamp: testStart},
				{Username: "bob", Bin: 2, Qty: 1, Timestamp: testStart.Add(time.Second)},
			},
			want: "row 2",
		},
		{
			name: "giveaway number issued twice",
			rows: []model.HistoryRow{
				{Username: "Bob", Bin: 1, Qty: 1, Giveaway: true, GiveawayNum: 1, Timestamp: testStart},
				{Username: "Alice", Bin: 2, Qty: 1, Giveaway: true, GiveawayNum: 1, Timestamp: testStart.Add(time.Second)},
			},
			want: "row 2",
		},
		{
			name: "giveaway row without a number",
			rows: []model.HistoryRow{
				{Username: "Bob", Bin: 1, Qty: 1, Giveaway: true, GiveawayNum: 0, Timestamp: testStart},
			},
			want: "row 1",
		},
		{
			name: "bin below one",
			rows: []model.HistoryRow{
				{Username: "Bob", Bin: 0, Qty: 1, Timestamp: testStart},
			},
			want: "row 1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RebuildSession("20250131_141503", testStart, model.TierGold, 300, tc.rows)
			require.ErrorIs(t, err, ErrConflictingImport)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRebuildSessionAllowsNonMonotonicGiveawayNumbers(t *testing.T) {
	// exported rows group by bidder, so giveaway numbers are legitimately
	// out of order in file order (Bob drew #1 and #3 around Alice's #2)
	rows := []model.HistoryRow{
		{Username: "Bob", Bin: 1, Qty: 1, Giveaway: true, GiveawayNum: 1, Timestamp: testStart},
		{Username: "Bob", Bin: 1, Qty: 1, Giveaway: true, GiveawayNum: 3, Timestamp: testStart.Add(2 * time.Second)},
		{Username: "Alice", Bin: 2, Qty: 1, Giveaway: true, GiveawayNum: 2, Timestamp: testStart.Add(time.Second)},
	}
	s, err := RebuildSession("20250131_141503", testStart, model.TierGold, 300, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, s.GiveawayCount())
	assert.Equal(t, 4, s.NextGiveawayNumber())
}

func TestTotalsInvariant(t *testing.T) {
	s := newTestSession(150)
	inputs := []struct {
		name string
		qty  int
	}{
		{"a", 2}, {"b", 1}, {"A", 3}, {"c", 5}, {"b", 1},
	}
	for _, in := range inputs {
		_, _, err := s.RecordTransaction(in.name, in.qty, "", false, testStart)
		require.NoError(t, err)
	}
	for _, key := range []string{"a", "b", "c"} {
		rec := s.Bidder(key)
		require.NotNil(t, rec)
		sum := 0
		for _, txn := range rec.Transactions {
			sum += txn.Qty
		}
		assert.Equal(t, rec.TotalItems, sum, "TotalItems must equal the sum over the ledger for %q", key)
	}
}

func TestShowIDFormat(t *testing.T) {
	s := newTestSession(150)
	assert.Equal(t, "20250131_141503", s.ShowID)

	parsed, err := time.Parse(model.ShowIDLayout, s.ShowID)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(testStart))
}

func TestSummary(t *testing.T) {
	s := newTestSession(150)
	_, _, err := s.RecordTransaction("a", 1, "", false, testStart)
	require.NoError(t, err)
	_, _, err = s.RecordTransaction("a", 1, "", false, testStart)
	require.NoError(t, err)

	end := testStart.Add(2 * time.Hour)
	sum := s.Summary(end)
	assert.Equal(t, s.ShowID, sum.ShowID)
	assert.Equal(t, testStart, sum.StartTime)
	assert.Equal(t, end, sum.EndTime)
	assert.Equal(t, 1, sum.TotalBidders)
	assert.Equal(t, 2, sum.TotalTransactions)
}

func TestQuotaErrorIsComparable(t *testing.T) {
	s := newTestSession(0)
	_, _, err := s.RecordTransaction("a", 1, "", false, testStart)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
}
