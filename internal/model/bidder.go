package model

import "time"

// TimestampLayout is the wall-clock format used everywhere a transaction
// timestamp crosses a boundary: the bidder-history CSV, the auction summary
// and API responses.  Second precision, 12-hour clock with AM/PM marker.
const TimestampLayout = "2006-01-02 03:04:05 PM"

// ShowIDLayout formats a show's creation time into its identifier,
// e.g. "20250131_141503".
const ShowIDLayout = "20060102_150405"

// GiveawayNumber tags a transaction with its position in the global
// giveaway sequence.  A transaction that is not a giveaway has Valid=false;
// on the wire this is serialized as 0 (or a blank CSV cell).
type GiveawayNumber struct {
	Valid bool
	N     int
}

// Serial returns the wire representation: the sequence number for a
// giveaway, 0 otherwise.
func (g GiveawayNumber) Serial() int {
	if g.Valid {
		return g.N
	}
	return 0
}

// Transaction is a single ledger entry for a bidder.  Bin duplicates the
// owning record's bin number so a transaction row can be exported on its
// own.  Entries are ordered by arrival, not by timestamp; the clock only
// has second precision and ties are common.
type Transaction struct {
	Bin       int
	Qty       int
	Weight    string // weight class, may be empty
	Giveaway  GiveawayNumber
	Timestamp time.Time
}

// IsGiveaway reports whether this transaction consumed a giveaway number.
func (t Transaction) IsGiveaway() bool { return t.Giveaway.Valid }

// BidderRecord is the append-only history of one bidder within a show.
//
//	NormalizedID – case-folded handle, the map key inside a session.
//	DisplayName  – the handle exactly as first seen; never rewritten.
//	Bin          – storage bin assigned on first transaction; immutable.
//	TotalItems   – denormalized sum of Qty over Transactions.
type BidderRecord struct {
	NormalizedID string
	DisplayName  string
	Bin          int
	Transactions []Transaction
	TotalItems   int
}
