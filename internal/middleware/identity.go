package middleware

// identity.go defines helpers shared across middleware files for pulling
// the authenticated seller out of the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID extracts the authenticated seller's id from the context, as set
// by JWTAuth.  The jwt library decodes numeric claims as float64; string
// subjects are parsed for good measure.  Returns 0 when unauthenticated.
func UserID(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
