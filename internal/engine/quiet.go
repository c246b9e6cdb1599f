package engine

import (
	"time"

	"github.com/joshsymonds/sieve/internal/rules"
)

// ShouldSkip reports whether now falls inside the quiet-hours window
// [start, end) in the configured timezone. A window with start > end wraps
// past midnight: [22:00, 06:00) covers late evening and early morning.
func ShouldSkip(now time.Time, qh *rules.QuietHours) bool {
	if qh == nil || !qh.Enabled {
		return false
	}
	local := now.In(qh.Location)
	cur := local.Hour()*60 + local.Minute()
	start := qh.Start.Minutes()
	end := qh.End.Minutes()
	switch {
	case start == end:
		// zero-length window suppresses nothing
		return false
	case start < end:
		return cur >= start && cur < end
	default:
		return cur >= start || cur < end
	}
}
