// Package show implements the bin/ledger assignment engine: it hands out
// sequential storage bins to bidders, numbers giveaway entries, keeps the
// per-bidder transaction ledger and derives every read-only view over it.
package show

import "errors"

// Sentinel errors returned by session operations.  All of them are
// recoverable: a rejected call leaves the session exactly as it was.
// Handlers translate them into HTTP statuses with errors.Is.
var (
	// ErrInvalidIdentity is returned when a bidder handle is empty or
	// whitespace-only after trimming.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrInvalidQuantity is returned when a quantity is not a positive
	// integer ("0", negative and non-numeric input all fail the same way).
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrQuotaExceeded is returned when allocating a new bin would go past
	// the tier limit.  The allocator cursor is left untouched.
	ErrQuotaExceeded = errors.New("bin quota exceeded")

	// ErrQuotaViolationOnImport is returned when an imported row carries a
	// bin number beyond the current tier limit.  The whole import is
	// rejected; the live session is not modified.
	ErrQuotaViolationOnImport = errors.New("imported bin exceeds tier quota")

	// ErrConflictingImport is returned when imported rows contradict each
	// other: one bin claimed by two bidders, one bidder spread over two
	// bins, or a giveaway number issued twice.  The whole import is
	// rejected; the live session is not modified.
	ErrConflictingImport = errors.New("conflicting history rows")

	// ErrInsufficientData is returned by the sell-rate calculation when
	// fewer than two transactions exist across the whole session.
	ErrInsufficientData = errors.New("insufficient data")
)
