package timex

import (
	"errors"
	"math"
	"time"
)

const Day = 24 * time.Hour

// StartOfDay truncates t to midnight of its calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day, each read in
// its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey formats the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// InclusiveDays is ceil((end-start)/24h) + 1 measured on the wall clock of
// start's location, so a range crossing a DST change still counts calendar
// days. A zero-length range counts as one day.
func InclusiveDays(start, end time.Time) int {
	diff := wallClock(end.In(start.Location())).Sub(wallClock(start))
	return int(math.Ceil(float64(diff)/float64(Day))) + 1
}

// wallClock reinterprets t's date and clock reading as UTC.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

// DaysInRange lists the midnight of every calendar day from start to end,
// inclusive. It returns nil when end is before start.
func DaysInRange(start, end time.Time) []time.Time {
	from := StartOfDay(start)
	to := StartOfDay(end.In(start.Location()))
	if to.Before(from) {
		return nil
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// AtClock returns the given hour and minute on the calendar day of day.
func AtClock(day time.Time, hour, min int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, min, 0, 0, day.Location())
}

var ErrUnparsableTime = errors.New("unparsable date/time")

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseISO accepts the ISO-8601 variants found in saved and hand-written
// documents. Values without an offset are read in loc (time.Local when nil).
func ParseISO(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparsableTime
}

// FormatISO renders t the way documents store it.
func FormatISO(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
