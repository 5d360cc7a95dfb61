package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Day-granularity calendar value (this IS a daily schedule system)
// =============================================================================

// Day is a calendar date at day granularity, always UTC. The zero value
// means "unbounded" when used as a rule boundary.
type Day struct {
	Time time.Time
}

const dayKeyLayout = "2006-01-02"

// Constructors
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar date.
func FromTime(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay parses a YYYY-MM-DD date key.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayKeyLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	return Day{Time: t}, nil
}

// MustParseDay is ParseDay for literals in tests and seed data.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Key returns the YYYY-MM-DD form, the sole lookup key into the override
// store and the equality key for "is today".
func (d Day) Key() string { return d.Time.Format(dayKeyLayout) }

func (d Day) String() string { return d.Key() }

// Comparison
func (d Day) Before(o Day) bool { return d.Time.Before(o.Time) }
func (d Day) After(o Day) bool  { return d.Time.After(o.Time) }
func (d Day) Equal(o Day) bool  { return d.Time.Equal(o.Time) }
func (d Day) IsZero() bool      { return d.Time.IsZero() }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Day) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Day) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// =============================================================================
// WEEK AND MONTH BOUNDS - Display weeks run Sunday..Saturday
// =============================================================================

// StartOfWeek returns the Sunday of d's display week.
func StartOfWeek(d Day) Day { return d.AddDays(-int(d.Weekday())) }

// EndOfWeek returns the Saturday of d's display week.
func EndOfWeek(d Day) Day { return d.AddDays(6 - int(d.Weekday())) }

func StartOfMonth(d Day) Day { return NewDay(d.Time.Year(), d.Time.Month(), 1) }

func EndOfMonth(d Day) Day {
	return NewDay(d.Time.Year(), d.Time.Month()+1, 1).AddDays(-1)
}

// =============================================================================
// ISO WEEK NUMBER - Thursday-anchored, used only for biweekly parity
// =============================================================================

// ISOWeekNumber computes the ISO 8601 week number: shift the date to the
// Thursday of its (Monday-based) week, then count weeks from that ISO
// year's January 1st. Display weeks are Sunday-based; this deliberately
// is not, and is used only for the every-other-week cadence test.
func ISOWeekNumber(d Day) int {
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7 // ISO weekday: Monday=1..Sunday=7
	}
	thursday := d.AddDays(4 - wd)
	yearStart := NewDay(thursday.Time.Year(), time.January, 1)
	days := int(thursday.Time.Sub(yearStart.Time).Hours() / 24)
	return days/7 + 1
}

// SameWeekParity reports whether d falls on the anchor's side of a
// biweekly cadence.
func SameWeekParity(d Day, weekAnchor int) bool {
	anchor := weekAnchor % 2
	if anchor < 0 {
		anchor += 2
	}
	return ISOWeekNumber(d)%2 == anchor
}

// DaysBetween returns the inclusive sequence of days from from to to.
// An inverted range yields nil.
func DaysBetween(from, to Day) []Day {
	if to.Before(from) {
		return nil
	}
	var days []Day
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
