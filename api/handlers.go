/*
handlers.go - HTTP API handlers for the schedule resolution engine

PURPOSE:
  Exposes the resolution engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  Views:
    GET    /api/schedule/day?date=           Resolved day view
    GET    /api/schedule/week?date=          7-day view (Sun..Sat)
    GET    /api/schedule/month?date=         Calendar month view
    GET    /api/schedule/my/{personID}?date= Single-person weekly view
    GET    /api/schedule/coverage?from=&to=  Scheduled-headcount summary

  Roster:
    GET    /api/roster                       List roster
    POST   /api/roster                       Add person
    GET    /api/roster/{id}                  Get person
    DELETE /api/roster/{id}                  Remove person

  Rules:
    GET    /api/rules                        List recurring rules
    POST   /api/rules                        Create rule (appends; stored
                                             order is the matching order)
    DELETE /api/rules/{id}                   Delete rule

  Overrides:
    GET    /api/schedule/day/{date}/overrides   Raw day document
    PUT    /api/schedule/day/{date}/overrides   Upsert day document
    DELETE /api/schedule/day/{date}/overrides   Delete day document

  Admin:
    POST   /api/admin/reminders              Schedule a reminder task

REQUEST FLOW:
  1. Parse HTTP request (dates are explicit; "date" defaults to today
     at this boundary only - the engine never reads the clock)
  2. Load a snapshot for the view's range
  3. Aggregate and serialize

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate person)
  - 500: Internal errors
  A failed provider fetch is NOT a 500: the snapshot degrades to empty
  layers and the view still renders (see schedule/service.go).

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *schedule.Service

	// now is the reference clock for "today" defaults; a field so tests
	// can pin it.
	now func() time.Time
}

// NewHandler creates a new handler backed by store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		Service: schedule.NewService(store, store, store),
		now:     time.Now,
	}
}

// =============================================================================
// VIEW ENDPOINTS
// =============================================================================

// GetDaySchedule returns the resolved day view.
// GET /api/schedule/day?date=YYYY-MM-DD
func (h *Handler) GetDaySchedule(w http.ResponseWriter, r *http.Request) {
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	snap, err := h.Service.LoadRange(r.Context(), day, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayScheduleDTO(snap.DaySchedule(day)))
}

// GetWeekSchedule returns the 7 day views of the date's display week.
// GET /api/schedule/week?date=YYYY-MM-DD
func (h *Handler) GetWeekSchedule(w http.ResponseWriter, r *http.Request) {
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	from, to := schedule.StartOfWeek(day), schedule.EndOfWeek(day)
	snap, err := h.Service.LoadRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayScheduleDTOs(snap.WeekSchedule(day)))
}

// GetMonthSchedule returns the calendar month view.
// GET /api/schedule/month?date=YYYY-MM-DD
func (h *Handler) GetMonthSchedule(w http.ResponseWriter, r *http.Request) {
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	from, to := schedule.StartOfMonth(day), schedule.EndOfMonth(day)
	snap, err := h.Service.LoadRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedule", err)
		return
	}
	month := snap.MonthSchedule(day)
	writeJSON(w, http.StatusOK, MonthScheduleDTO{
		LeadingBlankDays: month.LeadingBlankDays,
		Days:             toDayScheduleDTOs(month.Days),
	})
}

// GetMySchedule returns one person's weekly view.
// GET /api/schedule/my/{personID}?date=YYYY-MM-DD
func (h *Handler) GetMySchedule(w http.ResponseWriter, r *http.Request) {
	personID := schedule.PersonID(chi.URLParam(r, "personID"))
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	from, to := schedule.StartOfWeek(day), schedule.EndOfWeek(day)
	snap, err := h.Service.LoadRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayScheduleDTOs(snap.MySchedule(personID, day)))
}

// GetCoverage returns the per-day scheduled-headcount summary.
// GET /api/schedule/coverage?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	from, err := schedule.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'from' date", err)
		return
	}
	to, err := schedule.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'to' date", err)
		return
	}
	snap, err := h.Service.LoadRange(r.Context(), from, to)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load schedule", err)
		return
	}

	coverage := snap.Coverage(from, to)
	dtos := make([]CoverageDTO, len(coverage))
	for i, c := range coverage {
		dtos[i] = CoverageDTO{
			Date:      c.Date.Key(),
			Scheduled: c.Scheduled,
			Off:       c.Off,
			Roster:    c.Roster,
			Ratio:     c.Ratio.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ROSTER ENDPOINTS
// =============================================================================

// ListRoster returns all roster members.
// GET /api/roster
func (h *Handler) ListRoster(w http.ResponseWriter, r *http.Request) {
	people, err := h.Store.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list roster", err)
		return
	}
	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = PersonDTO{ID: string(p.ID), Name: p.Name, ZoneName: p.ZoneName}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson adds a roster member.
// POST /api/roster
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	p := schedule.Person{ID: schedule.PersonID(req.ID), Name: req.Name, ZoneName: req.ZoneName}
	if err := h.Store.AddPerson(r.Context(), p); err != nil {
		writeError(w, statusFor(err), "Failed to create person", err)
		return
	}
	writeJSON(w, http.StatusCreated, PersonDTO(req))
}

// GetPerson returns a single roster member.
// GET /api/roster/{id}
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := schedule.PersonID(chi.URLParam(r, "id"))
	p, err := h.Store.GetPerson(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get person", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Person not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, PersonDTO{ID: string(p.ID), Name: p.Name, ZoneName: p.ZoneName})
}

// DeletePerson removes a roster member.
// DELETE /api/roster/{id}
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := schedule.PersonID(chi.URLParam(r, "id"))
	if err := h.Store.RemovePerson(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RULE ENDPOINTS
// =============================================================================

// ListRules returns all recurring rules for the roster, in stored order.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	people, err := h.Store.GetAll(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list roster", err)
		return
	}
	ids := make([]schedule.PersonID, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	rules, err := h.Store.GetAllForRoster(ctx, ids)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}
	dtos := make([]RuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = toRuleDTO(rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRule creates a recurring rule at the end of the stored order.
// POST /api/rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TechnicianID == "" {
		writeError(w, http.StatusBadRequest, "technicianId is required", nil)
		return
	}
	if len(req.Days) == 0 {
		writeError(w, http.StatusBadRequest, "days must not be empty", nil)
		return
	}
	for _, d := range req.Days {
		if d < 0 || d > 6 {
			writeError(w, http.StatusBadRequest, "days must be in 0..6 (0=Sunday)", nil)
			return
		}
	}
	freq := schedule.Frequency(req.Frequency)
	if freq != schedule.FrequencyWeekly && freq != schedule.FrequencyEveryOtherWeek {
		writeError(w, http.StatusBadRequest, "frequency must be weekly or every-other-week", nil)
		return
	}

	rule := schedule.RecurringRule{
		ID:           uuid.NewString(),
		TechnicianID: schedule.PersonID(req.TechnicianID),
		Days:         req.Days,
		Frequency:    freq,
		WeekAnchor:   req.WeekAnchor,
		Status:       req.Status,
		Hours:        req.Hours,
	}
	var err error
	if req.StartDate != "" {
		if rule.StartDate, err = schedule.ParseDay(req.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid startDate", err)
			return
		}
	}
	if req.EndDate != "" {
		if rule.EndDate, err = schedule.ParseDay(req.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid endDate", err)
			return
		}
	}
	if !rule.StartDate.IsZero() && !rule.EndDate.IsZero() && rule.EndDate.Before(rule.StartDate) {
		writeError(w, http.StatusBadRequest, "endDate before startDate", schedule.ErrInvalidRange)
		return
	}

	if err := h.Store.AddRule(r.Context(), rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRuleDTO(rule))
}

// DeleteRule deletes a recurring rule.
// DELETE /api/rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.RemoveRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), "Failed to delete rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// OVERRIDE DOCUMENT ENDPOINTS
// =============================================================================

// GetDayOverrides returns the raw override document for a date.
// GET /api/schedule/day/{date}/overrides
func (h *Handler) GetDayOverrides(w http.ResponseWriter, r *http.Request) {
	day, err := schedule.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	doc, err := h.Store.GetDocument(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get day document", err)
		return
	}
	if doc == nil {
		// Absence is normal; return an empty document rather than 404.
		doc = &schedule.DayDocument{Date: day.Key(), StaffList: []schedule.OverrideEntry{}}
	}
	writeJSON(w, http.StatusOK, doc)
}

// PutDayOverrides upserts the override document for a date. Subscribed
// live views pick up the change without an explicit refresh.
// PUT /api/schedule/day/{date}/overrides
func (h *Handler) PutDayOverrides(w http.ResponseWriter, r *http.Request) {
	day, err := schedule.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	var req DayDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	doc := schedule.DayDocument{
		Date:      day.Key(), // path date wins over any body date
		Notes:     req.Notes,
		StaffList: req.StaffList,
	}
	if err := h.Store.PutDocument(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save day document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDayOverrides deletes the override document for a date.
// DELETE /api/schedule/day/{date}/overrides
func (h *Handler) DeleteDayOverrides(w http.ResponseWriter, r *http.Request) {
	day, err := schedule.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if err := h.Store.RemoveDocument(r.Context(), day); err != nil {
		writeError(w, statusFor(err), "Failed to delete day document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// CreateReminder schedules a reminder task for the background ticker.
// POST /api/admin/reminders
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := schedule.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	dueAt, err := time.Parse(time.RFC3339, req.DueAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dueAt, want RFC3339", err)
		return
	}
	person, err := h.Store.GetPerson(r.Context(), schedule.PersonID(req.PersonID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up person", err)
		return
	}
	if person == nil {
		writeError(w, http.StatusNotFound, "Person not found", nil)
		return
	}

	task := sqlite.Task{
		ID:       uuid.NewString(),
		PersonID: person.ID,
		Date:     day,
		DueAt:    dueAt,
	}
	if err := h.Store.AddTask(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to schedule reminder", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": task.ID})
}

// =============================================================================
// HELPERS
// =============================================================================

// queryDate parses the "date" query parameter, defaulting to today.
// This handler boundary is the only place the wall clock is read.
func (h *Handler) queryDate(w http.ResponseWriter, r *http.Request) (schedule.Day, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return schedule.FromTime(h.now()), true
	}
	day, err := schedule.ParseDay(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD", err)
		return schedule.Day{}, false
	}
	return day, true
}

func statusFor(err error) int {
	switch {
	case schedule.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrDuplicatePerson):
		return http.StatusConflict
	case schedule.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
