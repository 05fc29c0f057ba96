package harvest

import "time"

// Run carries the clock state for one invocation, computed once up front so
// every component sees the same instant.
type Run struct {
	Now       time.Time
	TargetDay time.Time // UTC midnight of the day being harvested
}

// NewRun builds run state for now, targeting yesterday's UTC calendar day.
func NewRun(now time.Time) Run {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Run{
		Now:       now,
		TargetDay: today.AddDate(0, 0, -1),
	}
}

// NewRunForDay builds run state targeting an explicit UTC day.
func NewRunForDay(now, day time.Time) Run {
	day = day.UTC()
	return Run{
		Now:       now.UTC(),
		TargetDay: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// InWindow reports whether pubDate falls on the target UTC calendar day.
func InWindow(pubDate, targetDay time.Time) bool {
	if pubDate.IsZero() {
		return false
	}
	y1, m1, d1 := pubDate.UTC().Date()
	y2, m2, d2 := targetDay.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
