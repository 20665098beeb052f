package points

import (
	"sort"
	"time"
)

// Streak counts consecutive calendar days (in loc) with at least one entry,
// ending at the most recent entry's day. It does not compare against the
// current date, so a stale history still reports its last run.
func Streak(dates []time.Time, loc *time.Location) int {
	if len(dates) == 0 {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].After(sorted[j])
	})

	streak := 1
	for i := 0; i < len(sorted)-1; i++ {
		diff := daysBetween(sorted[i], sorted[i+1], loc)
		if diff == 1 {
			streak++
		} else if diff > 1 {
			break
		}
	}
	return streak
}

// daysBetween returns the number of calendar days from b to a in loc.
// Dates are rebuilt in UTC so DST transitions do not skew the count.
func daysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(da.Sub(db).Hours() / 24)
}
