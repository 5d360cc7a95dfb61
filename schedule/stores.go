/*
stores.go - Provider interfaces consumed by the engine

PURPOSE:
  The engine reads three independent collections: the roster, the
  recurring rule set and the per-date override documents. These
  interfaces are all it knows about them; the write path (creating and
  editing people, rules and overrides) belongs to the callers.

IMPLEMENTATIONS:
  - schedule/store: in-memory, for tests and dev mode
  - store/sqlite:   production SQLite
*/
package schedule

import "context"

// RosterProvider supplies the people the engine resolves schedules for.
type RosterProvider interface {
	// GetAll returns the full roster. Order is not significant; views
	// re-sort by name.
	GetAll(ctx context.Context) ([]Person, error)
}

// RuleStore supplies recurring rules.
type RuleStore interface {
	// GetAllForRoster returns every rule belonging to any of personIDs,
	// in stored order. Stored order is load-bearing: rule matching is
	// first-match-wins over this order.
	GetAllForRoster(ctx context.Context, personIDs []PersonID) ([]RecurringRule, error)
}

// CancelFunc tears down a subscription. Safe to call more than once.
type CancelFunc func()

// OverrideStore supplies day-specific override documents.
type OverrideStore interface {
	// GetRange returns the documents for dates in [from, to]. Sparse:
	// dates with no document are simply absent from the result.
	GetRange(ctx context.Context, from, to Day) ([]DayDocument, error)

	// SubscribeRange registers onChange to fire whenever a document
	// whose date falls in [from, to] is written. Used for push-style
	// live view updates.
	SubscribeRange(from, to Day, onChange func()) CancelFunc
}
