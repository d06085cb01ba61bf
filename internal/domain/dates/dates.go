// Package dates implements calendar-day arithmetic on local dates.
//
// A time.Time here stands for a calendar date in its own location. All
// arithmetic goes through time.Date so month ends, leap years and DST
// transitions normalise the way a wall calendar does.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/applytrack/internal/domain/types"
)

const (
	isoLayout   = "2006-01-02"
	monthLayout = "2006-01"

	// DaysPerWeek is the width of a calendar row.
	DaysPerWeek = 7
)

// ISODate formats t as YYYY-MM-DD using its own year, month and day.
func ISODate(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseISO parses a strict YYYY-MM-DD string to midnight in loc.
// A nil loc means time.Local.
func ParseISO(s string, loc *time.Location) (time.Time, error) {
	const op = "dates.ParseISO"
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if len(s) != len(isoLayout) {
		return time.Time{}, types.Invalid(op, "malformed iso date %q", s)
	}
	t, err := time.ParseInLocation(isoLayout, s, loc)
	if err != nil {
		return time.Time{}, types.WrapKind(op, ErrInvalidDate, err)
	}
	return t, nil
}

// ParseMonth parses YYYY-MM to the first day of that month in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	const op = "dates.ParseMonth"
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if len(s) != len(monthLayout) {
		return time.Time{}, types.Invalid(op, "malformed month %q", s)
	}
	t, err := time.ParseInLocation(monthLayout, s, loc)
	if err != nil {
		return time.Time{}, types.WrapKind(op, ErrInvalidDate, err)
	}
	return t, nil
}

// StartOfDay returns t's date at 00:00.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first day of t's month at 00:00.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last day of t's month at 00:00.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping the wall clock time.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d+n, hh, mm, ss, t.Nanosecond(), t.Location())
}

// AddMonths returns the first day of the month n months away from t.
func AddMonths(t time.Time, n int) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a's date to b's date.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// DaysUntil is the signed number of days from now's date to iso.
// Negative values are in the past.
func DaysUntil(now time.Time, iso string) (int, error) {
	if now.IsZero() {
		return 0, types.Invalid("dates.DaysUntil", "missing reference date")
	}
	due, err := ParseISO(iso, now.Location())
	if err != nil {
		return 0, err
	}
	return DaysBetween(now, due), nil
}

// DueLabel renders the distance to iso for humans.
func DueLabel(now time.Time, iso string) (string, error) {
	n, err := DaysUntil(now, iso)
	if err != nil {
		return "", err
	}
	return LabelForDays(n), nil
}

// LabelForDays renders a signed day distance.
func LabelForDays(n int) string {
	switch {
	case n < 0:
		return fmt.Sprintf("%dd overdue", -n)
	case n == 0:
		return "due today"
	case n == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %dd", n)
	}
}

// WeekStart returns the Monday on or before t, at 00:00.
func WeekStart(t time.Time) time.Time {
	back := (int(t.Weekday()) + DaysPerWeek - 1) % DaysPerWeek
	return StartOfDay(AddDays(t, -back))
}

// WeekStartISO is WeekStart formatted as an ISO date.
func WeekStartISO(t time.Time) string {
	return ISODate(WeekStart(t))
}

// FormatWeekLabel renders an ISO date as month/day without padding.
func FormatWeekLabel(iso string) (string, error) {
	t, err := ParseISO(iso, time.UTC)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day()), nil
}

// SundayOnOrBefore returns the Sunday starting t's calendar row, at 00:00.
func SundayOnOrBefore(t time.Time) time.Time {
	return StartOfDay(AddDays(t, -int(t.Weekday())))
}
