package model

import "time"

// HistoryRow mirrors one line of the bidder-history CSV
// (username,bin,qty,weight,giveaway,giveaway_num,timestamp).  Username
// carries the original display form; normalization happens when the row is
// folded back into a session.
type HistoryRow struct {
	Username    string
	Bin         int
	Qty         int
	Weight      string
	Giveaway    bool
	GiveawayNum int // 0 when Giveaway is false
	Timestamp   time.Time
}

// ShowSummary is the one-row archive written when a show is cleared.
type ShowSummary struct {
	ShowID            string
	StartTime         time.Time
	EndTime           time.Time
	TotalBidders      int
	TotalTransactions int
}
