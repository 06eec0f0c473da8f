package period

import (
	"testing"
	"time"

	"github.com/hostfolio/payout/internal/clock"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePayoutWeekAllWeekdays(t *testing.T) {
	// 2024-06-04 is a Tuesday.
	anchor := date(2024, time.June, 4)
	for i := 0; i < 14; i++ {
		ref := anchor.AddDate(0, 0, i)
		week := ResolvePayoutWeek(ref)
		if week.Start.Weekday() != time.Tuesday {
			t.Fatalf("ref %s: start %s is not a Tuesday", ref, week.Start)
		}
		if week.End.Weekday() != time.Monday {
			t.Fatalf("ref %s: end %s is not a Monday", ref, week.End)
		}
		if !week.End.Equal(week.Start.AddDate(0, 0, 6)) {
			t.Fatalf("ref %s: week is not six days long", ref)
		}
		if ref.Before(week.Start) || ref.After(week.End) {
			t.Fatalf("ref %s outside resolved week [%s, %s]", ref, week.Start, week.End)
		}
	}
}

func TestResolvePayoutWeekSundayMondayFallBack(t *testing.T) {
	// Sunday 2024-06-09 and Monday 2024-06-10 belong to the week that
	// started Tuesday 2024-06-04.
	for _, ref := range []time.Time{date(2024, time.June, 9), date(2024, time.June, 10)} {
		week := ResolvePayoutWeek(ref)
		if !week.Start.Equal(date(2024, time.June, 4)) {
			t.Fatalf("ref %s: expected start 2024-06-04, got %s", ref, week.Start)
		}
	}
}

func TestResolvePayoutWeekOnTuesday(t *testing.T) {
	week := ResolvePayoutWeek(date(2024, time.June, 11))
	if !week.Start.Equal(date(2024, time.June, 11)) {
		t.Fatalf("expected Tuesday reference to start its own week, got %s", week.Start)
	}
	if !week.End.Equal(date(2024, time.June, 17)) {
		t.Fatalf("expected end 2024-06-17, got %s", week.End)
	}
}

func TestIsValidPayoutWeek(t *testing.T) {
	start := date(2024, time.June, 4)
	end := date(2024, time.June, 10)
	if !IsValidPayoutWeek(start, end) {
		t.Fatalf("expected canonical week to validate")
	}
	if IsValidPayoutWeek(start.AddDate(0, 0, 1), end) {
		t.Fatalf("expected shifted start to fail")
	}
	if IsValidPayoutWeek(start, end.AddDate(0, 0, 1)) {
		t.Fatalf("expected shifted end to fail")
	}
	if IsValidPayoutWeek(start, end.AddDate(0, 0, 7)) {
		t.Fatalf("expected 13-day window to fail")
	}
}

func TestShouldIncludeReservationInWeekInclusiveBoundaries(t *testing.T) {
	week := Week{Start: date(2024, time.June, 4), End: date(2024, time.June, 10)}
	if !ShouldIncludeReservationInWeek(week.Start, week) {
		t.Fatalf("checkout on week start should be included")
	}
	if !ShouldIncludeReservationInWeek(week.End, week) {
		t.Fatalf("checkout on week end should be included")
	}
	if ShouldIncludeReservationInWeek(week.Start.AddDate(0, 0, -1), week) {
		t.Fatalf("checkout before week should be excluded")
	}
	if ShouldIncludeReservationInWeek(week.End.AddDate(0, 0, 1), week) {
		t.Fatalf("checkout after week should be excluded")
	}
}

func TestResolverCurrentAndPrevious(t *testing.T) {
	// Thursday 2024-06-13.
	fixed := clock.Fixed{Instant: date(2024, time.June, 13)}
	r := NewResolver(fixed)

	current := r.Current()
	if !current.Start.Equal(date(2024, time.June, 11)) {
		t.Fatalf("expected current week to start 2024-06-11, got %s", current.Start)
	}

	previous := r.Previous()
	if !previous.Start.Equal(date(2024, time.June, 4)) {
		t.Fatalf("expected previous week to start 2024-06-04, got %s", previous.Start)
	}
}

func TestNewWindowValidatesOrder(t *testing.T) {
	if _, err := NewWindow(date(2024, time.June, 10), date(2024, time.June, 4)); err == nil {
		t.Fatalf("expected inverted window to fail")
	}
	w, err := NewWindow(date(2024, time.June, 4), date(2024, time.June, 4))
	if err != nil {
		t.Fatalf("single-day window should validate: %v", err)
	}
	if !w.Contains(date(2024, time.June, 4)) {
		t.Fatalf("single-day window should contain its only day")
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-06-04")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(date(2024, time.June, 4)) {
		t.Fatalf("expected 2024-06-04, got %s", parsed)
	}
	if _, err := ParseDate("06/04/2024"); err == nil {
		t.Fatalf("expected non-ISO date to fail")
	}
}
