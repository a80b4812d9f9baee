package dateutil

import (
	"errors"
	"time"
)

// Format renders t with a dayjs-style layout. The zero time renders as "".
func Format(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	if layout == "" {
		layout = DateLayout
	}
	return t.Format(GoLayout(layout))
}

// FormatDateTime renders t as "YYYY-MM-DD HH:mm:ss".
func FormatDateTime(t time.Time) string {
	return Format(t, DateTimeLayout)
}

// FormatTime renders t as "HH:mm:ss".
func FormatTime(t time.Time) string {
	return Format(t, TimeLayout)
}

// Range is an inclusive time span.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within r.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Today returns the start of now's day.
func Today(now time.Time) time.Time {
	return StartOfDay(now)
}

// Yesterday returns the start of the day before now.
func Yesterday(now time.Time) time.Time {
	return StartOfDay(now.AddDate(0, 0, -1))
}

// WeekStart returns the first day of the week for a date locale:
// Monday for "zh-cn", Sunday otherwise.
func WeekStart(dateLocale string) time.Weekday {
	if dateLocale == "zh-cn" {
		return time.Monday
	}
	return time.Sunday
}

// Week returns the week containing t.
func Week(t time.Time, weekStart time.Weekday) Range {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	start := StartOfDay(t.AddDate(0, 0, -offset))
	return Range{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Nanosecond)}
}

// ThisWeek returns the week containing now.
func ThisWeek(now time.Time, weekStart time.Weekday) Range {
	return Week(now, weekStart)
}

// LastWeek returns the week before the one containing now.
func LastWeek(now time.Time, weekStart time.Weekday) Range {
	return Week(now.AddDate(0, 0, -7), weekStart)
}

// MonthRange returns the calendar month containing t.
func MonthRange(t time.Time) Range {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// ThisMonth returns the month containing now.
func ThisMonth(now time.Time) Range {
	return MonthRange(now)
}

// LastMonth returns the month before the one containing now.
func LastMonth(now time.Time) Range {
	y, m, _ := now.Date()
	return MonthRange(time.Date(y, m-1, 1, 0, 0, 0, 0, now.Location()))
}

// ThisYear returns the calendar year containing now.
func ThisYear(now time.Time) Range {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return Range{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
}

// DateRange spans from the start of the day days ago to the end of today.
func DateRange(now time.Time, days int) Range {
	return Range{Start: StartOfDay(now.AddDate(0, 0, -days)), End: EndOfDay(now)}
}

// RecentDays spans the last days days including today.
func RecentDays(now time.Time, days int) Range {
	return DateRange(now, days-1)
}

// IsSameDay reports whether a and b fall on the same calendar day in a's
// location.
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsSameMonth reports whether a and b fall in the same calendar month in
// a's location.
func IsSameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Unit is a Diff granularity.
type Unit string

const (
	Day   Unit = "day"
	Month Unit = "month"
	Year  Unit = "year"
)

// Diff returns a minus b in whole units, truncated toward zero.
func Diff(a, b time.Time, unit Unit) int {
	switch unit {
	case Month:
		return monthDiff(a, b)
	case Year:
		return monthDiff(a, b) / 12
	default:
		return int(a.Sub(b) / (24 * time.Hour))
	}
}

func monthDiff(a, b time.Time) int {
	months := (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
	anchor := b.AddDate(0, months, 0)
	switch {
	case months > 0 && a.Before(anchor):
		months--
	case months < 0 && a.After(anchor):
		months++
	}
	return months
}

// fallbackLayouts are tried by Parse when no layout is given.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ErrInvalidDate is returned by Parse for unparsable input.
var ErrInvalidDate = errors.New("dateutil: invalid date")

// Parse reads value with a dayjs-style layout, or with common ISO-like
// layouts when layout is empty. Times without a zone are local.
func Parse(value, layout string) (time.Time, error) {
	if layout != "" {
		t, err := time.ParseInLocation(GoLayout(layout), value, time.Local)
		if err != nil {
			return time.Time{}, errors.Join(ErrInvalidDate, err)
		}
		return t, nil
	}
	for _, l := range fallbackLayouts {
		if t, err := time.ParseInLocation(l, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// IsValid reports whether value parses with the default layouts.
func IsValid(value string) bool {
	if value == "" {
		return false
	}
	_, err := Parse(value, "")
	return err == nil
}

// Unix returns t in seconds since the epoch.
func Unix(t time.Time) int64 {
	return t.Unix()
}

// FromUnix returns the local time for sec seconds since the epoch.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0)
}
