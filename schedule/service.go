/*
service.go - Snapshot loading and live updates

PURPOSE:
  Bridges the provider interfaces and the pure engine. LoadRange fetches
  the roster, the rule set and the range's override documents
  concurrently (three independent reads, no shared mutable state) and
  assembles an immutable Snapshot. Watch keeps a snapshot current for a
  range via the override store's push subscription.

DEGRADATION:
  A failed fetch is logged and replaced by an empty collection: an empty
  rule set means every date uses the default policy, an empty override
  set means no overrides apply. The caller always gets a structurally
  valid (if possibly all-default) snapshot. Retries, if any, belong to
  the providers.

STALE RESULTS:
  When the watched range changes, in-flight fetches for the previous
  range may still complete. Races resolve by "last range requested
  wins": each request carries a generation number, and a result is
  discarded if a newer request has started since - never by arrival
  order.
*/
package schedule

import (
	"context"
	"log"
	"sync"
)

// Service loads snapshots from the three providers.
type Service struct {
	Roster    RosterProvider
	Rules     RuleStore
	Overrides OverrideStore

	mu     sync.Mutex
	gen    uint64
	cancel CancelFunc
}

func NewService(roster RosterProvider, rules RuleStore, overrides OverrideStore) *Service {
	return &Service{Roster: roster, Rules: rules, Overrides: overrides}
}

// LoadRange builds a snapshot for [from, to]. The three fetches run
// concurrently; failures degrade to empty collections.
func (s *Service) LoadRange(ctx context.Context, from, to Day) (*Snapshot, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	snap := &Snapshot{From: from, To: to, Overrides: map[string]*DayDocument{}}

	var wg sync.WaitGroup
	var roster []Person
	var rules []RecurringRule
	var docs []DayDocument
	var rosterErr, rulesErr, docsErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		roster, rosterErr = s.Roster.GetAll(ctx)
	}()
	go func() {
		defer wg.Done()
		docs, docsErr = s.Overrides.GetRange(ctx, from, to)
	}()
	wg.Wait()

	// The rule fetch needs the roster's person IDs, so it follows the
	// roster fetch rather than racing it.
	if rosterErr != nil {
		log.Printf("[Service] %v", &FetchError{Layer: "roster", Err: rosterErr})
		roster = nil
	}
	if len(roster) > 0 {
		ids := make([]PersonID, len(roster))
		for i, p := range roster {
			ids[i] = p.ID
		}
		rules, rulesErr = s.Rules.GetAllForRoster(ctx, ids)
		if rulesErr != nil {
			log.Printf("[Service] %v", &FetchError{Layer: "rules", Err: rulesErr})
			rules = nil
		}
	}
	if docsErr != nil {
		log.Printf("[Service] %v", &FetchError{Layer: "overrides", Err: docsErr})
		docs = nil
	}

	snap.Roster = roster
	snap.Rules = rules
	for i := range docs {
		d, err := ParseDay(docs[i].Date)
		if err != nil {
			// Malformed document date: skip rather than fail the pass.
			log.Printf("[Service] skipping override document with bad date %q", docs[i].Date)
			continue
		}
		snap.Overrides[d.Key()] = &docs[i]
	}
	return snap, nil
}

// Watch loads [from, to], delivers the snapshot to fn, and re-loads on
// every override change notification for the range, replacing any watch
// of a previous range. Results from superseded ranges are discarded.
// The returned cancel tears down the subscription.
func (s *Service) Watch(ctx context.Context, from, to Day, fn func(*Snapshot)) (CancelFunc, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	refresh := func() {
		snap, err := s.LoadRange(ctx, from, to)
		if err != nil {
			log.Printf("[Service] watch reload: %v", err)
			return
		}
		s.mu.Lock()
		stale := gen != s.gen
		s.mu.Unlock()
		if stale {
			return
		}
		fn(snap)
	}
	cancel := s.Overrides.SubscribeRange(from, to, func() { go refresh() })
	s.cancel = cancel
	s.mu.Unlock()

	go refresh()

	return func() {
		s.mu.Lock()
		if gen == s.gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}, nil
}
