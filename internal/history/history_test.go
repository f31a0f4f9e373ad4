package history

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

var ts = time.Date(2025, 1, 31, 14, 15, 3, 0, time.UTC)

func sampleRows() []model.HistoryRow {
	return []model.HistoryRow{
		{Username: "Bob", Bin: 1, Qty: 2, Weight: "M", Timestamp: ts},
		{Username: "Alice", Bin: 2, Qty: 1, Giveaway: true, GiveawayNum: 1, Timestamp: ts.Add(time.Second)},
		{Username: "Bob", Bin: 1, Qty: 1, Timestamp: ts.Add(2 * time.Second)},
	}
}

func TestAppendBidderHistoryRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	rows := sampleRows()

	path, err := store.AppendBidderHistory("20250131_141503", rows)
	require.NoError(t, err)
	assert.Equal(t, store.BidderHistoryPath("20250131_141503"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ReadBidderHistory(f)
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].Username, got[i].Username)
		assert.Equal(t, rows[i].Bin, got[i].Bin)
		assert.Equal(t, rows[i].Qty, got[i].Qty)
		assert.Equal(t, rows[i].Weight, got[i].Weight)
		assert.Equal(t, rows[i].Giveaway, got[i].Giveaway)
		assert.Equal(t, rows[i].GiveawayNum, got[i].GiveawayNum)
		assert.True(t, rows[i].Timestamp.Equal(got[i].Timestamp), "row %d timestamp", i)
	}
}

func TestAppendBidderHistoryHeaderOnce(t *testing.T) {
	store := NewStore(t.TempDir())
	rows := sampleRows()

	_, err := store.AppendBidderHistory("show1", rows[:1])
	require.NoError(t, err)
	path, err := store.AppendBidderHistory("show1", rows[1:])
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "username,bin,qty"),
		"second export must not repeat the header")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := ReadBidderHistory(f)
	require.NoError(t, err)
	assert.Len(t, got, 3, "both exports accumulate in one file")
}

func TestBidderHistoryFormat(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.AppendBidderHistory("show1", sampleRows())
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "username,bin,qty,weight,giveaway,giveaway_num,timestamp", lines[0])
	assert.Equal(t, "Bob,1,2,M,No,,2025-01-31 02:15:03 PM", lines[1])
	assert.Equal(t, "Alice,2,1,,Yes,1,2025-01-31 02:15:04 PM", lines[2])
}

func TestReadBidderHistoryTruthyMarkers(t *testing.T) {
	csv := "username,bin,qty,weight,giveaway,giveaway_num,timestamp\n" +
		"a,1,1,,YES,1,2025-01-31 02:15:03 PM\n" +
		"b,2,1,,true,2,2025-01-31 02:15:03 PM\n" +
		"c,3,1,,1,3,2025-01-31 02:15:03 PM\n" +
		"d,4,1,,No,9,2025-01-31 02:15:03 PM\n"

	rows, err := ReadBidderHistory(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.True(t, rows[0].Giveaway)
	assert.True(t, rows[1].Giveaway)
	assert.True(t, rows[2].Giveaway)
	assert.False(t, rows[3].Giveaway)
	assert.Zero(t, rows[3].GiveawayNum, "giveaway_num is meaningless on a non-giveaway row")
}

func TestReadBidderHistoryHeaderVariants(t *testing.T) {
	// column order and casing are free, extra columns are ignored
	csv := "Timestamp,USERNAME,bin,qty,weight,giveaway,giveaway_num,notes\n" +
		"2025-01-31 02:15:03 PM,Bob,1,2,M,No,,something\n"
	rows, err := ReadBidderHistory(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].Username)
	assert.Equal(t, 1, rows[0].Bin)
}

func TestReadBidderHistoryMissingColumn(t *testing.T) {
	csv := "username,bin,qty,weight,giveaway,timestamp\n"
	_, err := ReadBidderHistory(strings.NewReader(csv))
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "giveaway_num")
}

func TestReadBidderHistoryBadRows(t *testing.T) {
	cases := []struct {
		name string
		row  string
		want string
	}{
		{"empty username", " ,1,1,,No,,2025-01-31 02:15:03 PM", "username"},
		{"zero bin", "a,0,1,,No,,2025-01-31 02:15:03 PM", "bin"},
		{"negative qty", "a,1,-2,,No,,2025-01-31 02:15:03 PM", "qty"},
		{"bad giveaway num", "a,1,1,,Yes,x,2025-01-31 02:15:03 PM", "giveaway_num"},
		{"bad timestamp", "a,1,1,,No,,yesterday", "timestamp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			csv := "username,bin,qty,weight,giveaway,giveaway_num,timestamp\n" + tc.row + "\n"
			_, err := ReadBidderHistory(strings.NewReader(csv))
			require.ErrorIs(t, err, ErrMalformedRecord)
			assert.Contains(t, err.Error(), "row 2")
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestWriteSummary(t *testing.T) {
	store := NewStore(t.TempDir())
	sum := model.ShowSummary{
		ShowID:            "20250131_141503",
		StartTime:         ts,
		EndTime:           ts.Add(2 * time.Hour),
		TotalBidders:      3,
		TotalTransactions: 7,
	}

	path, err := store.WriteSummary(sum)
	require.NoError(t, err)
	assert.Equal(t, store.SummaryPath(sum.ShowID), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "show_id,start_time,end_time,total_bidders,total_transactions", lines[0])
	assert.Equal(t, "20250131_141503,2025-01-31 02:15:03 PM,2025-01-31 04:15:03 PM,3,7", lines[1])
}

// Full round trip: live session -> CSV on disk -> parsed rows -> rebuilt
// session, which must match the original ledger and cursors.
func TestSessionRoundTripThroughDisk(t *testing.T) {
	src := show.NewSession(model.TierGold, 300, ts)
	record := func(name string, qty int, weight string, giveaway bool, offset time.Duration) {
		t.Helper()
		_, _, err := src.RecordTransaction(name, qty, weight, giveaway, ts.Add(offset))
		require.NoError(t, err)
	}
	record("Bob", 2, "M", false, 0)
	record("Alice", 1, "", true, 30*time.Second)
	record("bob", 1, "S", true, time.Minute)
	record("Carol", 4, "L", false, 2*time.Minute)

	store := NewStore(t.TempDir())
	path, err := store.AppendBidderHistory(src.ShowID, src.HistoryRows())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := ReadBidderHistory(f)
	require.NoError(t, err)

	got, err := show.RebuildSession(src.ShowID, src.StartedAt, src.Tier, src.MaxBins(), rows)
	require.NoError(t, err)

	assert.Equal(t, src.BidderCount(), got.BidderCount())
	assert.Equal(t, src.TransactionCount(), got.TransactionCount())
	assert.Equal(t, src.GiveawayCount(), got.GiveawayCount())
	assert.Equal(t, src.NextBin(), got.NextBin())
	assert.Equal(t, src.NextGiveawayNumber(), got.NextGiveawayNumber())
	for _, key := range []string{"bob", "alice", "carol"} {
		want, have := src.Bidder(key), got.Bidder(key)
		require.NotNil(t, have, key)
		assert.Equal(t, want.DisplayName, have.DisplayName)
		assert.Equal(t, want.Bin, have.Bin)
		assert.Equal(t, want.TotalItems, have.TotalItems)
		require.Len(t, have.Transactions, len(want.Transactions))
		for i := range want.Transactions {
			assert.Equal(t, want.Transactions[i].Qty, have.Transactions[i].Qty)
			assert.Equal(t, want.Transactions[i].Weight, have.Transactions[i].Weight)
			assert.Equal(t, want.Transactions[i].Giveaway, have.Transactions[i].Giveaway)
			assert.True(t, want.Transactions[i].Timestamp.Equal(have.Transactions[i].Timestamp))
		}
	}
}
