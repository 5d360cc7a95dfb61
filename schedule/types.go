/*
Package schedule is the staff schedule resolution engine.

PURPOSE:
  This package answers one question: for any calendar date and any person
  on the roster, what is their effective daily work status? The answer is
  computed from three layers, in strict precedence order:

    1. Daily override  - a supervisor's explicit entry for one person/date
    2. Recurring rule  - a standing weekly or biweekly availability pattern
    3. Default policy  - weekday => "Scheduled", weekend => "Off"

  Per-person results are aggregated into day/week/month/"my schedule"
  views with a weekday/weekend-aware primary/secondary grouping that
  surfaces the exceptions to the expected working pattern first.

KEY CONCEPTS IN THIS FILE (types.go):
  - Person: roster member (read-only to this engine)
  - RecurringRule: standing weekly/biweekly pattern for one person
  - OverrideEntry / DayDocument: sparse per-date explicit entries
  - ResolvedDayStatus: the engine's only output entity

DESIGN PRINCIPLES:
  1. Determinism: the reference date is always an explicit argument;
     nothing in this package reads the wall clock.
  2. Immutability: inputs are treated as snapshots per resolution pass;
     ResolvedDayStatus is created fresh per call and never mutated.
  3. Degradation over failure: missing documents, missing rules and
     malformed records are normal conditions, not errors.

SEE ALSO:
  - calendar.go: day-granularity calendar math (ISO week, week/month bounds)
  - rules.go:    first-match-wins recurring rule selection
  - resolver.go: the three-layer precedence composition
  - aggregate.go: period views and primary/secondary grouping
*/
package schedule

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PersonID string

// =============================================================================
// PERSON - Roster member (owned by the roster collaborator)
// =============================================================================

type Person struct {
	ID       PersonID
	Name     string
	ZoneName string
}

// =============================================================================
// STATUS - Effective daily work status values
// =============================================================================

const (
	StatusScheduled    = "Scheduled"
	StatusOff          = "Off"
	StatusVacation     = "Vacation"
	StatusSick         = "Sick"
	StatusNotScheduled = "Not Scheduled"
)

// offStatuses are the statuses treated as "not working" by the
// primary/secondary grouping. Comparison is case-insensitive.
var offStatuses = map[string]bool{
	"off":             true,
	"sick":            true,
	"vacation":        true,
	"no-call-no-show": true,
}

// IsOffStatus reports whether status counts as an absence for grouping.
func IsOffStatus(status string) bool {
	return offStatuses[strings.ToLower(status)]
}

func isScheduledStatus(status string) bool {
	return strings.EqualFold(status, StatusScheduled)
}

// =============================================================================
// RECURRING RULE - Standing weekly/biweekly pattern for one person
// =============================================================================

type Frequency string

const (
	FrequencyWeekly         Frequency = "weekly"
	FrequencyEveryOtherWeek Frequency = "every-other-week"
)

// RecurringRule is a standing availability pattern for one person.
// Days is the set of weekdays (0=Sunday..6=Saturday) the rule applies to.
// StartDate/EndDate bound validity inclusively; a zero Day means unbounded
// in that direction. Rules are immutable once loaded for a resolution pass.
type RecurringRule struct {
	ID           string
	TechnicianID PersonID
	Days         []int
	Frequency    Frequency
	WeekAnchor   int
	StartDate    Day
	EndDate      Day
	Status       string
	Hours        string
}

// appliesToDay reports whether d's weekday is in the rule's day set.
func (r RecurringRule) appliesToDay(d Day) bool {
	wd := int(d.Weekday())
	for _, day := range r.Days {
		if day == wd {
			return true
		}
	}
	return false
}

// =============================================================================
// DAILY OVERRIDE - Sparse per-date explicit entries
// =============================================================================

// OverrideEntry is one person's explicit status for one date.
// Legacy documents used "id" instead of "technicianId" for the person
// reference; stores normalize that at the read boundary (see UnmarshalJSON)
// so the resolver only ever sees TechnicianID.
type OverrideEntry struct {
	TechnicianID PersonID `json:"technicianId"`
	Status       string   `json:"status"`
	Hours        string   `json:"hours,omitempty"`
}

// UnmarshalJSON accepts both the current "technicianId" field and the
// legacy "id" field, normalizing to TechnicianID so the dual-name
// ambiguity never reaches the resolver.
func (e *OverrideEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		TechnicianID PersonID `json:"technicianId"`
		LegacyID     PersonID `json:"id"`
		Status       string   `json:"status"`
		Hours        string   `json:"hours"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.TechnicianID = raw.TechnicianID
	if e.TechnicianID == "" {
		e.TechnicianID = raw.LegacyID
	}
	e.Status = raw.Status
	e.Hours = raw.Hours
	return nil
}

// DayDocument is the override document for a single calendar date.
// Most dates have no document; both a missing document and an empty
// staff list are normal, non-error conditions.
type DayDocument struct {
	Date      string          `json:"date"`
	Notes     string          `json:"notes,omitempty"`
	StaffList []OverrideEntry `json:"staffList"`
}

// EntryFor returns the override entry for personID, or nil if the
// document has none. Entries with no technician reference never match.
func (doc *DayDocument) EntryFor(personID PersonID) *OverrideEntry {
	if doc == nil {
		return nil
	}
	for i := range doc.StaffList {
		e := &doc.StaffList[i]
		if e.TechnicianID != "" && e.TechnicianID == personID {
			return e
		}
	}
	return nil
}

// =============================================================================
// RESOLVED DAY STATUS - The engine's only output entity
// =============================================================================

// ResolvedDayStatus is the effective status of one person on one date.
// Created fresh per Resolve call, never persisted, never mutated.
type ResolvedDayStatus struct {
	PersonID PersonID `json:"personId"`
	Name     string   `json:"name"`
	ZoneName string   `json:"zoneName"`
	Status   string   `json:"status"`
	Hours    string   `json:"hours"`
}
