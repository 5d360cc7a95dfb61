/*
rules.go - Recurring rule matching

PURPOSE:
  Selects the recurring rule, if any, that governs a person on a date.
  A candidate matches when its date range (inclusive), day-of-week set
  and cadence parity all hold.

FIRST-MATCH-WINS:
  A person can have multiple overlapping rules (a permanent
  "every-other-Friday off" plus a temporary "vacation Mon-Fri" range).
  Whichever appears earlier in the stored list wins; rules are NOT
  ranked by specificity, narrowest range or recency. That ordering
  dependency is an explicit, tested policy - PickFirstMatch - so a
  future change to rank-by-specificity is a one-function change.
  Stakeholders may already rely on insertion-order behavior; do not
  change it silently.
*/
package schedule

// RuleApplies reports whether rule governs personID on day d: the
// technician matches, d is inside the validity range, d's weekday is in
// the rule's day set, and the cadence parity holds. Malformed rules
// (no technician, empty day set) never apply.
func RuleApplies(rule RecurringRule, personID PersonID, d Day) bool {
	if rule.TechnicianID == "" || rule.TechnicianID != personID {
		return false
	}
	if len(rule.Days) == 0 {
		return false
	}
	if !rule.StartDate.IsZero() && d.Before(rule.StartDate) {
		return false
	}
	if !rule.EndDate.IsZero() && d.After(rule.EndDate) {
		return false
	}
	if !rule.appliesToDay(d) {
		return false
	}
	switch rule.Frequency {
	case FrequencyEveryOtherWeek:
		return SameWeekParity(d, rule.WeekAnchor)
	default:
		// Weekly, including rules that never set a frequency.
		return true
	}
}

// PickFirstMatch returns the first rule in original list order that
// applies to personID on d, or nil. Later candidates are not considered
// even if they would also match.
func PickFirstMatch(rules []RecurringRule, personID PersonID, d Day) *RecurringRule {
	for i := range rules {
		if RuleApplies(rules[i], personID, d) {
			return &rules[i]
		}
	}
	return nil
}
