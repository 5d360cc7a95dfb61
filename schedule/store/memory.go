// Package store provides in-memory provider implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements RosterProvider, RuleStore and OverrideStore over
// plain maps. Writes notify range subscribers, so live-view behavior is
// testable without a database.
type Memory struct {
	mu        sync.RWMutex
	people    []schedule.Person
	rules     []schedule.RecurringRule
	documents map[string]schedule.DayDocument

	subsMu  sync.Mutex
	nextSub int
	subs    map[int]rangeSub
}

type rangeSub struct {
	from, to schedule.Day
	onChange func()
}

func NewMemory() *Memory {
	return &Memory{
		documents: make(map[string]schedule.DayDocument),
		subs:      make(map[int]rangeSub),
	}
}

// =============================================================================
// ROSTER
// =============================================================================

func (m *Memory) GetAll(_ context.Context) ([]schedule.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.Person, len(m.people))
	copy(out, m.people)
	return out, nil
}

func (m *Memory) AddPerson(p schedule.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.people {
		if existing.ID == p.ID {
			return schedule.ErrDuplicatePerson
		}
	}
	m.people = append(m.people, p)
	return nil
}

func (m *Memory) RemovePerson(id schedule.PersonID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.people {
		if p.ID == id {
			m.people = append(m.people[:i], m.people[i+1:]...)
			return nil
		}
	}
	return schedule.ErrPersonNotFound
}

// =============================================================================
// RULES - Stored order is preserved; matching is first-match-wins
// =============================================================================

func (m *Memory) GetAllForRoster(_ context.Context, personIDs []schedule.PersonID) ([]schedule.RecurringRule, error) {
	wanted := make(map[schedule.PersonID]bool, len(personIDs))
	for _, id := range personIDs {
		wanted[id] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.RecurringRule
	for _, r := range m.rules {
		if wanted[r.TechnicianID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) AddRule(r schedule.RecurringRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, r)
}

func (m *Memory) RemoveRule(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return schedule.ErrRuleNotFound
}

// =============================================================================
// OVERRIDE DOCUMENTS
// =============================================================================

func (m *Memory) GetRange(_ context.Context, from, to schedule.Day) ([]schedule.DayDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.DayDocument
	for _, d := range schedule.DaysBetween(from, to) {
		if doc, ok := m.documents[d.Key()]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// PutDocument upserts a day document and notifies subscribers whose
// range covers the date.
func (m *Memory) PutDocument(doc schedule.DayDocument) error {
	day, err := schedule.ParseDay(doc.Date)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.documents[day.Key()] = doc
	m.mu.Unlock()
	m.notify(day)
	return nil
}

func (m *Memory) RemoveDocument(day schedule.Day) error {
	m.mu.Lock()
	if _, ok := m.documents[day.Key()]; !ok {
		m.mu.Unlock()
		return schedule.ErrDayNotFound
	}
	delete(m.documents, day.Key())
	m.mu.Unlock()
	m.notify(day)
	return nil
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

func (m *Memory) SubscribeRange(from, to schedule.Day, onChange func()) schedule.CancelFunc {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = rangeSub{from: from, to: to, onChange: onChange}
	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Memory) notify(day schedule.Day) {
	m.subsMu.Lock()
	var fire []func()
	for _, sub := range m.subs {
		if !day.Before(sub.from) && !day.After(sub.to) {
			fire = append(fire, sub.onChange)
		}
	}
	m.subsMu.Unlock()
	for _, fn := range fire {
		fn()
	}
}
