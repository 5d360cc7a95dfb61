/*
resolver.go - Three-layer precedence composition

PURPOSE:
  Computes one person's effective status for one date. Exactly one of
  {override, matched rule, default policy} determines the final status,
  applied in that precedence order. A present-but-empty status or hours
  field in a higher layer does not blank out a lower layer's value; the
  empty field falls through.

SNAPSHOT:
  Resolution runs against an immutable Snapshot of roster, rules and
  override documents for a date range. Nothing persists between calls;
  every aggregation is a pure recomputation, so identical inputs yield
  identical output.
*/
package schedule

// Snapshot is an immutable view of the three inputs for a date range.
// Built once per resolution pass by the Service (or directly by tests);
// never mutated afterwards.
type Snapshot struct {
	From   Day
	To     Day
	Roster []Person
	Rules  []RecurringRule

	// Overrides is keyed by Day.Key(). Sparse: most dates have no entry.
	Overrides map[string]*DayDocument
}

// Document returns the override document for d, or nil. Absence is a
// normal condition.
func (s *Snapshot) Document(d Day) *DayDocument {
	if s == nil || s.Overrides == nil {
		return nil
	}
	return s.Overrides[d.Key()]
}

// Resolve computes person's effective status on d from the snapshot's
// rules and override documents.
func (s *Snapshot) Resolve(person Person, d Day) ResolvedDayStatus {
	return Resolve(person, d, s.Rules, s.Document(d))
}

// Resolve applies the three precedence layers:
//
//	base     = default policy for the date
//	rule     = first matching recurring rule, overlaying non-empty fields
//	override = day-specific entry, overlaying non-empty fields
//
// Override strictly dominates rule, rule strictly dominates default.
func Resolve(person Person, d Day, rules []RecurringRule, doc *DayDocument) ResolvedDayStatus {
	base := DefaultFor(d)

	if matched := PickFirstMatch(rules, person.ID, d); matched != nil {
		base = overlay(base, matched.Status, matched.Hours)
	}
	if entry := doc.EntryFor(person.ID); entry != nil {
		base = overlay(base, entry.Status, entry.Hours)
	}

	return ResolvedDayStatus{
		PersonID: person.ID,
		Name:     person.Name,
		ZoneName: person.ZoneName,
		Status:   base.Status,
		Hours:    base.Hours,
	}
}

// overlay applies a higher-precedence layer's fields, letting empty
// fields fall through to the lower layer.
func overlay(base StatusValue, status, hours string) StatusValue {
	if status != "" {
		base.Status = status
	}
	if hours != "" {
		base.Hours = hours
	}
	return base
}
