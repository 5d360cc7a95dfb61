/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the three provider interfaces the engine consumes
  (RosterProvider, RuleStore, OverrideStore) plus the write path the
  engine deliberately does not own: creating and editing people,
  recurring rules and day override documents. Also holds the
  scheduled-task table used by the reminder scheduler.

INTERFACES IMPLEMENTED:
  schedule.RosterProvider:  roster reads
  schedule.RuleStore:       recurring rule reads (stored order preserved)
  schedule.OverrideStore:   day document reads + change subscription

KEY TABLES:
  people:          roster members
  recurring_rules: standing patterns; position column preserves insertion
                   order, which rule matching depends on (first-match-wins)
  day_schedules:   one row per calendar date; staff list stored as JSON.
                   The JSON decode is the normalization boundary for the
                   legacy "id" field name in old documents.
  scheduled_tasks: reminder tasks re-evaluated by the background ticker

CHANGE NOTIFICATION:
  Day document writes fan out to in-process range subscribers, the
  push-style subscription the live views use. A multi-process deployment
  would need an external channel; subscribers are per-process here.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/schedule.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - schedule/stores.go: interface definitions
  - schedule/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/schedule-engine/schedule"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB

	subsMu  sync.Mutex
	nextSub int
	subs    map[int]rangeSub
}

type rangeSub struct {
	from, to schedule.Day
	onChange func()
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, subs: make(map[int]rangeSub)}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset clears all tables. Demo scenario loading only.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"people", "recurring_rules", "day_schedules", "scheduled_tasks"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	scheme := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		zone_name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- position preserves insertion order. Rule matching is
	-- first-match-wins over this order; do not reorder on update.
	CREATE TABLE IF NOT EXISTS recurring_rules (
		id TEXT PRIMARY KEY,
		technician_id TEXT NOT NULL,
		days TEXT NOT NULL,            -- comma-separated 0..6
		frequency TEXT NOT NULL,
		week_anchor INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,               -- YYYY-MM-DD, NULL = unbounded
		end_date TEXT,
		status TEXT NOT NULL,
		hours TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rules_technician
		ON recurring_rules(technician_id, position);

	-- One row per calendar date. Sparse: most dates have no row.
	CREATE TABLE IF NOT EXISTS day_schedules (
		date TEXT PRIMARY KEY,         -- YYYY-MM-DD
		notes TEXT NOT NULL DEFAULT '',
		staff_json TEXT NOT NULL,      -- JSON array of override entries
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scheduled_tasks (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		date TEXT NOT NULL,            -- the schedule date being reminded about
		due_at TEXT NOT NULL,          -- RFC3339
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_due
		ON scheduled_tasks(status, due_at);
	`
	_, err := s.db.Exec(scheme)
	return err
}

// =============================================================================
// ROSTER
// =============================================================================

func (s *Store) GetAll(ctx context.Context) ([]schedule.Person, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, zone_name FROM people ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []schedule.Person
	for rows.Next() {
		var p schedule.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.ZoneName); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (s *Store) GetPerson(ctx context.Context, id schedule.PersonID) (*schedule.Person, error) {
	var p schedule.Person
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, zone_name FROM people WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.ZoneName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) AddPerson(ctx context.Context, p schedule.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO people (id, name, zone_name, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.ZoneName, time.Now().UTC().Format(time.RFC3339))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return schedule.ErrDuplicatePerson
	}
	return err
}

func (s *Store) RemovePerson(ctx context.Context, id schedule.PersonID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrPersonNotFound
	}
	return nil
}

// =============================================================================
// RECURRING RULES
// =============================================================================

func (s *Store) GetAllForRoster(ctx context.Context, personIDs []schedule.PersonID) ([]schedule.RecurringRule, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(personIDs)), ",")
	args := make([]any, len(personIDs))
	for i, id := range personIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, technician_id, days, frequency, week_anchor, start_date, end_date, status, hours
		 FROM recurring_rules WHERE technician_id IN (%s) ORDER BY position`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []schedule.RecurringRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func scanRule(rows *sql.Rows) (schedule.RecurringRule, error) {
	var r schedule.RecurringRule
	var days string
	var freq string
	var start, end sql.NullString
	if err := rows.Scan(&r.ID, &r.TechnicianID, &days, &freq, &r.WeekAnchor, &start, &end, &r.Status, &r.Hours); err != nil {
		return r, err
	}
	r.Frequency = schedule.Frequency(freq)
	r.Days = parseDaySet(days)
	if start.Valid && start.String != "" {
		if d, err := schedule.ParseDay(start.String); err == nil {
			r.StartDate = d
		}
	}
	if end.Valid && end.String != "" {
		if d, err := schedule.ParseDay(end.String); err == nil {
			r.EndDate = d
		}
	}
	return r, nil
}

func parseDaySet(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		var d int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &d); err == nil && d >= 0 && d <= 6 {
			days = append(days, d)
		}
	}
	return days
}

func formatDaySet(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return strings.Join(parts, ",")
}

// AddRule appends a rule at the end of the stored order.
func (s *Store) AddRule(ctx context.Context, r schedule.RecurringRule) error {
	var start, end any
	if !r.StartDate.IsZero() {
		start = r.StartDate.Key()
	}
	if !r.EndDate.IsZero() {
		end = r.EndDate.Key()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_rules
		 (id, technician_id, days, frequency, week_anchor, start_date, end_date, status, hours, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
		         (SELECT COALESCE(MAX(position), 0) + 1 FROM recurring_rules), ?)`,
		r.ID, r.TechnicianID, formatDaySet(r.Days), string(r.Frequency), r.WeekAnchor,
		start, end, r.Status, r.Hours, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) RemoveRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrRuleNotFound
	}
	return nil
}

// =============================================================================
// DAY OVERRIDE DOCUMENTS
// =============================================================================

func (s *Store) GetRange(ctx context.Context, from, to schedule.Day) ([]schedule.DayDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, notes, staff_json FROM day_schedules
		 WHERE date >= ? AND date <= ? ORDER BY date`,
		from.Key(), to.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []schedule.DayDocument
	for rows.Next() {
		var doc schedule.DayDocument
		var staffJSON string
		if err := rows.Scan(&doc.Date, &doc.Notes, &staffJSON); err != nil {
			return nil, err
		}
		// OverrideEntry.UnmarshalJSON normalizes the legacy "id" field
		// here, at the read boundary.
		if err := json.Unmarshal([]byte(staffJSON), &doc.StaffList); err != nil {
			return nil, fmt.Errorf("day %s: decode staff list: %w", doc.Date, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) GetDocument(ctx context.Context, day schedule.Day) (*schedule.DayDocument, error) {
	docs, err := s.GetRange(ctx, day, day)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// PutDocument upserts a day document and notifies range subscribers.
func (s *Store) PutDocument(ctx context.Context, doc schedule.DayDocument) error {
	day, err := schedule.ParseDay(doc.Date)
	if err != nil {
		return err
	}
	staffJSON, err := json.Marshal(doc.StaffList)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO day_schedules (date, notes, staff_json, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   notes = excluded.notes,
		   staff_json = excluded.staff_json,
		   updated_at = excluded.updated_at`,
		day.Key(), doc.Notes, string(staffJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	s.notify(day)
	return nil
}

func (s *Store) RemoveDocument(ctx context.Context, day schedule.Day) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM day_schedules WHERE date = ?`, day.Key())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrDayNotFound
	}
	s.notify(day)
	return nil
}

// =============================================================================
// SUBSCRIPTIONS - In-process fan-out on day document writes
// =============================================================================

func (s *Store) SubscribeRange(from, to schedule.Day, onChange func()) schedule.CancelFunc {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = rangeSub{from: from, to: to, onChange: onChange}
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(day schedule.Day) {
	s.subsMu.Lock()
	var fire []func()
	for _, sub := range s.subs {
		if !day.Before(sub.from) && !day.After(sub.to) {
			fire = append(fire, sub.onChange)
		}
	}
	s.subsMu.Unlock()
	for _, fn := range fire {
		fn()
	}
}

// =============================================================================
// SCHEDULED TASKS - Reminder table for the background ticker
// =============================================================================

// Task is one pending reminder: tell the person about their resolved
// status for Date once DueAt passes.
type Task struct {
	ID        string
	PersonID  schedule.PersonID
	Date      schedule.Day
	DueAt     time.Time
	Status    string
	CreatedAt time.Time
}

const (
	TaskPending = "pending"
	TaskSent    = "sent"
)

func (s *Store) AddTask(ctx context.Context, t Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_tasks (id, person_id, date, due_at, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.PersonID, t.Date.Key(), t.DueAt.UTC().Format(time.RFC3339),
		TaskPending, time.Now().UTC().Format(time.RFC3339))
	return err
}

// DueTasks returns pending tasks whose due time is at or before now.
func (s *Store) DueTasks(ctx context.Context, now time.Time) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, date, due_at FROM scheduled_tasks
		 WHERE status = ? AND due_at <= ? ORDER BY due_at`,
		TaskPending, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var date, due string
		if err := rows.Scan(&t.ID, &t.PersonID, &date, &due); err != nil {
			return nil, err
		}
		if t.Date, err = schedule.ParseDay(date); err != nil {
			return nil, err
		}
		if t.DueAt, err = time.Parse(time.RFC3339, due); err != nil {
			return nil, err
		}
		t.Status = TaskPending
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) MarkTaskSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_tasks SET status = ? WHERE id = ?`, TaskSent, id)
	return err
}
