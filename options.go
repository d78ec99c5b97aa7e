package overlay

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures a Filter.
type Options struct {
	// Position is the overlay placement as "<x-expr>:<y-expr>", for
	// example "10:20" or "main_w-overlay_w:0". The expressions may use
	// main_w, main_h, overlay_w and overlay_h. Empty or malformed
	// position strings fall back to "0:0".
	Position string
}

const defaultExpr = "0"

// parsePosition splits the "<x-expr>:<y-expr>" construction string.
// A malformed string is not fatal: both expressions fall back to "0",
// logged at warn level.
func parsePosition(s string) (xExpr, yExpr string) {
	if s == "" {
		return defaultExpr, defaultExpr
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		logrus.WithFields(logrus.Fields{
			"function": "parsePosition",
			"position": s,
		}).Warn("Malformed position string, using 0:0")
		return defaultExpr, defaultExpr
	}
	return parts[0], parts[1]
}
