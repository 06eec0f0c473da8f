package period

import (
	"fmt"
	"time"

	"github.com/hostfolio/payout/internal/clock"
)

// Week is a Tuesday-to-Monday settlement window.
type Week struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Window is an arbitrary [start, end] date range used by checkout- and
// calendar-based statements.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// InvalidWindowError reports a window whose end precedes its start.
type InvalidWindowError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid period window: start %s after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// NewWindow validates start <= end and truncates both to calendar dates.
func NewWindow(start, end time.Time) (Window, error) {
	start = DateOf(start)
	end = DateOf(end)
	if end.Before(start) {
		return Window{}, &InvalidWindowError{Start: start, End: end}
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether d falls within the window, inclusive both ends.
func (w Window) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// InvalidDateError reports a date string that is not ISO yyyy-mm-dd.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q, expected yyyy-mm-dd", e.Value)
}

// ParseDate parses an ISO calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: value}
	}
	return parsed, nil
}

// ResolvePayoutWeek locates the payout week containing the reference date.
// The week starts on the Tuesday on or before the reference date; Sunday and
// Monday therefore fall back to the previous Tuesday, closing on the Monday
// that follows the reference date.
func ResolvePayoutWeek(reference time.Time) Week {
	day := DateOf(reference)
	offset := (int(day.Weekday()) - int(time.Tuesday) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return Week{Start: start, End: start.AddDate(0, 0, 6)}
}

// IsValidPayoutWeek reports whether [start, end] is a canonical payout week:
// a Tuesday start, a Monday end, exactly six days apart.
func IsValidPayoutWeek(start, end time.Time) bool {
	start = DateOf(start)
	end = DateOf(end)
	if start.Weekday() != time.Tuesday || end.Weekday() != time.Monday {
		return false
	}
	return end.Equal(start.AddDate(0, 0, 6))
}

// ShouldIncludeReservationInWeek reports whether a reservation with the
// given check-out date settles in the week, inclusive at both boundaries.
func ShouldIncludeReservationInWeek(checkOut time.Time, week Week) bool {
	d := DateOf(checkOut)
	return !d.Before(week.Start) && !d.After(week.End)
}

// Resolver answers "which payout week is it" against an injected clock.
type Resolver struct {
	clock clock.Clock
}

// NewResolver constructs a Resolver.
func NewResolver(c clock.Clock) *Resolver {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Resolver{clock: c}
}

// Current returns the payout week containing now.
func (r *Resolver) Current() Week {
	return ResolvePayoutWeek(r.clock.Now())
}

// Previous returns the payout week containing now minus seven days.
func (r *Resolver) Previous() Week {
	return ResolvePayoutWeek(r.clock.Now().AddDate(0, 0, -7))
}
