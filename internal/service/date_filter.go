package service

import (
	"time"

	"eventhub-be/internal/models"
	"eventhub-be/internal/repository"
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// applyDateFilter narrows q to the calendar window named by f, computed in
// now's location. dateRange takes precedence over date; unknown values
// leave q unconstrained.
func applyDateFilter(q *repository.EventQuery, f models.EventFilter, now time.Time) {
	if f.Date == "today" {
		today := startOfDay(now)
		q.From, q.To, q.ToInclusive = today, today.AddDate(0, 0, 1), false
	}

	from, to, ok := dateRange(f.DateRange, now)
	if ok {
		q.From, q.To, q.ToInclusive = from, to, true
	}
}

// dateRange returns the inclusive window for a dateRange value. Weeks run
// Sunday through Saturday.
func dateRange(name string, now time.Time) (time.Time, time.Time, bool) {
	today := startOfDay(now)
	sunday := today.AddDate(0, 0, -int(today.Weekday()))
	y, m, _ := today.Date()
	loc := today.Location()

	switch name {
	case models.RangeCurrentWeek:
		return sunday, endOfDay(sunday.AddDate(0, 0, 6)), true
	case models.RangeLastWeek:
		return sunday.AddDate(0, 0, -7), endOfDay(sunday.AddDate(0, 0, -1)), true
	case models.RangeCurrentMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), endOfDay(time.Date(y, m+1, 0, 0, 0, 0, 0, loc)), true
	case models.RangeLastMonth:
		return time.Date(y, m-1, 1, 0, 0, 0, 0, loc), endOfDay(time.Date(y, m, 0, 0, 0, 0, 0, loc)), true
	}
	return time.Time{}, time.Time{}, false
}
