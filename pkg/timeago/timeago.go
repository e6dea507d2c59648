package timeago

import (
	"fmt"
	"time"
)

// Since renders how long ago t was relative to now: whole hours under a day,
// whole days after that. A zero t renders as "N/A".
func Since(t, now time.Time) string {
	if t.IsZero() {
		return "N/A"
	}

	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	hours := int(d.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd", hours/24)
}
