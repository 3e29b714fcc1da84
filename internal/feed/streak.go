package feed

import (
	"sort"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// CurrentStreak counts the consecutive calendar days, ending today or
// yesterday, that contain at least one timestamp. Days are calendar dates in
// now's location. A streak whose latest day is older than yesterday is broken
// and counts as 0.
func CurrentStreak(timestamps []time.Time, now time.Time) int {
	if len(timestamps) == 0 {
		return 0
	}

	loc := now.Location()
	seen := make(map[int64]struct{}, len(timestamps))
	days := make([]int64, 0, len(timestamps))
	for _, ts := range timestamps {
		day := dayNumber(ts.In(loc))
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })

	today := dayNumber(now)
	if gap := today - days[0]; gap != 0 && gap != 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] != 1 {
			break
		}
		streak++
	}
	return streak
}

// dayNumber maps t's calendar date (in t's own location) to a day count.
// Dates are re-anchored at UTC midnight so DST transitions cannot skew the
// distance between two dates.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}
