// Package history persists show data as flat CSV files: the per-show
// bidder history (one row per transaction, appended across exports) and the
// one-row auction summary written when a show is cleared.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

var bidderColumns = []string{"username", "bin", "qty", "weight", "giveaway", "giveaway_num", "timestamp"}

var summaryColumns = []string{"show_id", "start_time", "end_time", "total_bidders", "total_transactions"}

// Store writes history files under a single directory (the log dir).
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.  The directory is created lazily
// on first write.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// BidderHistoryPath returns the per-show bidder history file path.
func (s *Store) BidderHistoryPath(showID string) string {
	return filepath.Join(s.dir, "bidder_history_"+showID+".csv")
}

// SummaryPath returns the per-show auction summary file path.
func (s *Store) SummaryPath(showID string) string {
	return filepath.Join(s.dir, "auction_history_"+showID+".csv")
}

// AppendBidderHistory appends rows to the show's history file, writing the
// header only when the file is empty.  Repeated exports during the same
// show therefore accumulate without repeating the header.  Returns the file
// path written to.
func (s *Store) AppendBidderHistory(showID string, rows []model.HistoryRow) (string, error) {
	path := s.BidderHistoryPath(showID)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(bidderColumns); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}
	for _, row := range rows {
		giveaway := "No"
		giveawayNum := ""
		if row.Giveaway {
			giveaway = "Yes"
			giveawayNum = strconv.Itoa(row.GiveawayNum)
		}
		rec := []string{
			row.Username,
			strconv.Itoa(row.Bin),
			strconv.Itoa(row.Qty),
			row.Weight,
			giveaway,
			giveawayNum,
			row.Timestamp.Format(model.TimestampLayout),
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// WriteSummary writes (or overwrites) the auction summary for a show.
func (s *Store) WriteSummary(sum model.ShowSummary) (string, error) {
	path := s.SummaryPath(sum.ShowID)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryColumns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	rec := []string{
		sum.ShowID,
		sum.StartTime.Format(model.TimestampLayout),
		sum.EndTime.Format(model.TimestampLayout),
		strconv.Itoa(sum.TotalBidders),
		strconv.Itoa(sum.TotalTransactions),
	}
	if err := w.Write(rec); err != nil {
		return "", fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}
