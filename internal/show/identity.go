package show

import (
	"strconv"
	"strings"
)

// NormalizeIdentity canonicalizes a bidder handle.  The key is the trimmed,
// case-folded form used for lookups; display keeps the trimmed original
// casing for everything shown to humans.  Pure function.
func NormalizeIdentity(raw string) (key, display string, err error) {
	display = strings.TrimSpace(raw)
	if display == "" {
		return "", "", ErrInvalidIdentity
	}
	return strings.ToLower(display), display, nil
}

// ParseQuantity converts user-supplied quantity input into a positive
// integer.  An empty string defaults to 1 (one item per sale is the common
// case on a live show); anything that is not a positive integer fails with
// ErrInvalidQuantity.
func ParseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}
