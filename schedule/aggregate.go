/*
aggregate.go - Period views over resolved statuses

PURPOSE:
  Builds the day/week/month/"my schedule" views by resolving every
  roster member across a date range, and partitions each day's staff
  into primary/secondary groups.

PRIMARY/SECONDARY GROUPING:
  The normal case (weekday-working, weekend-off) is uninteresting and
  should not dominate the view; only the exceptions to the expected
  pattern are surfaced first.

    Weekend day: primary   = resolved "Scheduled" OR has an hours entry
                 secondary = an off-status with no hours entry
    Weekday:     primary   = an off-status OR has an hours entry
                 secondary = the normal "Scheduled" majority (no hours)

  The predicates are applied literally: a custom status outside both
  sets (say "Training" with no hours) stays in the full staff list but
  lands in neither group.
*/
package schedule

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// =============================================================================
// VIEW TYPES
// =============================================================================

// DaySchedule is one day's resolved roster, name-sorted, with the
// override document's notes and the primary/secondary partition.
type DaySchedule struct {
	Date      Day
	Notes     string
	Staff     []ResolvedDayStatus
	Primary   []ResolvedDayStatus
	Secondary []ResolvedDayStatus
}

// MonthSchedule is one calendar month of day schedules plus the number
// of leading blank cells a calendar grid needs before the 1st. The
// engine exposes the count; layout is the caller's concern.
type MonthSchedule struct {
	LeadingBlankDays int
	Days             []DaySchedule
}

// =============================================================================
// DAY VIEW
// =============================================================================

// DaySchedule resolves the whole roster for one date.
func (s *Snapshot) DaySchedule(d Day) DaySchedule {
	staff := make([]ResolvedDayStatus, 0, len(s.Roster))
	for _, person := range s.Roster {
		staff = append(staff, s.Resolve(person, d))
	}
	sortByName(staff)

	ds := DaySchedule{Date: d, Staff: staff}
	if doc := s.Document(d); doc != nil {
		ds.Notes = doc.Notes
	}
	ds.Primary, ds.Secondary = Partition(staff, d.IsWeekend())
	return ds
}

// sortByName orders resolved statuses by display name using locale-aware
// collation, case-insensitive.
func sortByName(staff []ResolvedDayStatus) {
	c := collate.New(language.AmericanEnglish, collate.IgnoreCase)
	sort.SliceStable(staff, func(i, j int) bool {
		return c.CompareString(staff[i].Name, staff[j].Name) < 0
	})
}

// =============================================================================
// PRIMARY/SECONDARY PARTITION
// =============================================================================

// Partition splits a day's resolved staff into the primary (exceptional)
// and secondary (routine) groups for the given day kind.
func Partition(staff []ResolvedDayStatus, weekend bool) (primary, secondary []ResolvedDayStatus) {
	for _, r := range staff {
		hasHours := r.Hours != ""
		if weekend {
			switch {
			case isScheduledStatus(r.Status) || hasHours:
				primary = append(primary, r)
			case IsOffStatus(r.Status) && !hasHours:
				secondary = append(secondary, r)
			}
			continue
		}
		switch {
		case IsOffStatus(r.Status) || hasHours:
			primary = append(primary, r)
		case isScheduledStatus(r.Status):
			secondary = append(secondary, r)
		}
	}
	return primary, secondary
}

// =============================================================================
// WEEK AND MONTH VIEWS
// =============================================================================

// WeekSchedule returns the 7 day schedules of anyDay's display week,
// Sunday through Saturday.
func (s *Snapshot) WeekSchedule(anyDay Day) []DaySchedule {
	days := make([]DaySchedule, 0, 7)
	for _, d := range DaysBetween(StartOfWeek(anyDay), EndOfWeek(anyDay)) {
		days = append(days, s.DaySchedule(d))
	}
	return days
}

// MonthSchedule returns one day schedule per calendar day of anyDay's
// month. LeadingBlankDays is the number of grid cells before the 1st in
// a Sunday-based calendar row.
func (s *Snapshot) MonthSchedule(anyDay Day) MonthSchedule {
	first := StartOfMonth(anyDay)
	month := MonthSchedule{LeadingBlankDays: int(first.Weekday())}
	for _, d := range DaysBetween(first, EndOfMonth(anyDay)) {
		month.Days = append(month.Days, s.DaySchedule(d))
	}
	return month
}

// =============================================================================
// MY SCHEDULE - Single-person weekly view
// =============================================================================

// MySchedule is the week view filtered to one person: always exactly 7
// entries, one per day. A person absent from the roster resolves to
// "Not Scheduled" with the day's notes still attached.
func (s *Snapshot) MySchedule(personID PersonID, anyDay Day) []DaySchedule {
	person, onRoster := s.findPerson(personID)

	days := make([]DaySchedule, 0, 7)
	for _, d := range DaysBetween(StartOfWeek(anyDay), EndOfWeek(anyDay)) {
		ds := DaySchedule{Date: d}
		if doc := s.Document(d); doc != nil {
			ds.Notes = doc.Notes
		}
		if onRoster {
			ds.Staff = []ResolvedDayStatus{s.Resolve(person, d)}
		} else {
			ds.Staff = []ResolvedDayStatus{{PersonID: personID, Status: StatusNotScheduled}}
		}
		days = append(days, ds)
	}
	return days
}

func (s *Snapshot) findPerson(personID PersonID) (Person, bool) {
	for _, p := range s.Roster {
		if p.ID == personID {
			return p, true
		}
	}
	return Person{}, false
}
