package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// COVERAGE SUMMARY - Scheduled-staff counts per day over a range
// =============================================================================

// DayCoverage is one day's headcount summary. Ratio is scheduled/roster
// as an exact decimal; zero when the roster is empty.
type DayCoverage struct {
	Date      Day
	Scheduled int
	Off       int
	Roster    int
	Ratio     decimal.Decimal
}

// Coverage summarizes scheduled headcount for every day in [from, to].
// A person counts as scheduled when their resolved status is
// "Scheduled" or they carry an hours entry; as off when their status is
// an off-status. Custom statuses count toward neither.
func (s *Snapshot) Coverage(from, to Day) []DayCoverage {
	var out []DayCoverage
	for _, d := range DaysBetween(from, to) {
		cov := DayCoverage{Date: d, Roster: len(s.Roster), Ratio: decimal.Zero}
		for _, person := range s.Roster {
			r := s.Resolve(person, d)
			switch {
			case isScheduledStatus(r.Status) || r.Hours != "":
				cov.Scheduled++
			case IsOffStatus(r.Status):
				cov.Off++
			}
		}
		if cov.Roster > 0 {
			cov.Ratio = decimal.NewFromInt(int64(cov.Scheduled)).
				Div(decimal.NewFromInt(int64(cov.Roster))).Round(4)
		}
		out = append(out, cov)
	}
	return out
}
