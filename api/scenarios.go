/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a roster plus the
	recurring rules and day overrides that demonstrate specific features.

AVAILABLE SCENARIOS:

	small-team:   Default policy only; weekday/weekend pattern
	rotations:    Weekly and every-other-week standing rules
	callouts:     Sick calls and vacation overrides layered on rules

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create roster members
 3. Create recurring rules (creation order is matching order)
 4. Optionally add day override documents

USAGE VIA API:

	POST /api/scenarios/load
	{"scenarioId": "rotations"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: other endpoints
  - store/sqlite: Reset
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "Four people on the default weekday/weekend pattern",
	},
	{
		ID:          "rotations",
		Name:        "Standing Rotations",
		Description: "Weekly days off plus an every-other-week Saturday rotation",
	},
	{
		ID:          "callouts",
		Name:        "Callouts",
		Description: "Sick calls and a vacation week layered over standing rules",
	},
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads a named scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "small-team":
		err = h.loadSmallTeam(ctx)
	case "rotations":
		err = h.loadRotations(ctx)
	case "callouts":
		err = h.loadCallouts(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) seedPeople(ctx context.Context, people []schedule.Person) error {
	for _, p := range people {
		if err := h.Store.AddPerson(ctx, p); err != nil {
			return fmt.Errorf("add person %s: %w", p.ID, err)
		}
	}
	return nil
}

func (h *Handler) loadSmallTeam(ctx context.Context) error {
	return h.seedPeople(ctx, []schedule.Person{
		{ID: "tech-1", Name: "Avery Banks", ZoneName: "North"},
		{ID: "tech-2", Name: "Morgan Cole", ZoneName: "South"},
		{ID: "tech-3", Name: "Riley Park", ZoneName: "East"},
		{ID: "tech-4", Name: "Quinn Hale", ZoneName: "West"},
	})
}

func (h *Handler) loadRotations(ctx context.Context) error {
	if err := h.loadSmallTeam(ctx); err != nil {
		return err
	}
	rules := []schedule.RecurringRule{
		{
			ID:           uuid.NewString(),
			TechnicianID: "tech-1",
			Days:         []int{3},
			Frequency:    schedule.FrequencyWeekly,
			Status:       schedule.StatusOff,
		},
		{
			ID:           uuid.NewString(),
			TechnicianID: "tech-2",
			Days:         []int{1},
			Frequency:    schedule.FrequencyWeekly,
			Status:       schedule.StatusOff,
		},
		{
			ID:           uuid.NewString(),
			TechnicianID: "tech-3",
			Days:         []int{6},
			Frequency:    schedule.FrequencyEveryOtherWeek,
			WeekAnchor:   schedule.ISOWeekNumber(schedule.MustParseDay("2024-02-03")),
			Status:       schedule.StatusScheduled,
			Hours:        "9am-1pm",
		},
	}
	for _, r := range rules {
		if err := h.Store.AddRule(ctx, r); err != nil {
			return fmt.Errorf("add rule for %s: %w", r.TechnicianID, err)
		}
	}
	return nil
}

func (h *Handler) loadCallouts(ctx context.Context) error {
	if err := h.loadRotations(ctx); err != nil {
		return err
	}

	today := schedule.FromTime(h.now())
	docs := []schedule.DayDocument{
		{
			Date:  today.Key(),
			Notes: "Two callouts, coverage is tight",
			StaffList: []schedule.OverrideEntry{
				{TechnicianID: "tech-2", Status: schedule.StatusSick},
				{TechnicianID: "tech-4", Status: schedule.StatusSick, Hours: "in at noon"},
			},
		},
		{
			Date: today.AddDays(1).Key(),
			StaffList: []schedule.OverrideEntry{
				{TechnicianID: "tech-1", Status: schedule.StatusVacation},
			},
		},
	}
	for _, doc := range docs {
		if err := h.Store.PutDocument(ctx, doc); err != nil {
			return fmt.Errorf("put document %s: %w", doc.Date, err)
		}
	}
	return nil
}
