package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Lookback returns the window of length d ending at now.
func Lookback(now time.Time, d time.Duration) Window {
	return Window{Start: now.Add(-d), End: now}
}

// Day returns the calendar day of t in loc as a window.
func Day(t time.Time, loc *time.Location) Window {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// ParseDay parses YYYY-MM-DD as a calendar day in loc.
func ParseDay(s string, loc *time.Location) (Window, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return Day(t, loc), nil
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Date formats the window start as YYYY-MM-DD.
func (w Window) Date() string {
	return w.Start.Format(DateLayout)
}
