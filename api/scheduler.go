/*
scheduler.go - Background reminder scheduler

PURPOSE:
  Periodically re-evaluates the scheduled-task table and fires reminders
  whose due time has passed. Tasks live in SQLite rather than in
  per-person timers, so nothing leaks across restarts: on startup the
  next tick simply picks up whatever is due.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Each tick queries pending tasks with due_at <= now
  - A due task resolves the person's status for the task's date against
    a fresh snapshot and marks the task sent
  - Delivery is a log line; actual notification transport is owned by
    the surrounding application

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreateReminder endpoint (task creation)
  - store/sqlite: scheduled_tasks table
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/store/sqlite"
)

// ReminderScheduler fires due reminder tasks.
type ReminderScheduler struct {
	Store         *sqlite.Store
	Service       *schedule.Service
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(store *sqlite.Store, handler *Handler) *ReminderScheduler {
	return &ReminderScheduler{
		Store:         store,
		Service:       handler.Service,
		CheckInterval: 1 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Reminders] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Reminders] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Reminders] Stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndFire()

	for {
		select {
		case <-rs.ticker.C:
			rs.checkAndFire()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) checkAndFire() {
	ctx := context.Background()
	now := time.Now()

	tasks, err := rs.Store.DueTasks(ctx, now)
	if err != nil {
		log.Printf("[Reminders] Error listing due tasks: %v", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	fired := 0
	for _, task := range tasks {
		if err := rs.fire(ctx, task); err != nil {
			log.Printf("[Reminders] Error firing task %s: %v", task.ID, err)
			continue
		}
		fired++
	}
	log.Printf("[Reminders] Completed: %d fired, %d due", fired, len(tasks))
}

func (rs *ReminderScheduler) fire(ctx context.Context, task sqlite.Task) error {
	snap, err := rs.Service.LoadRange(ctx, task.Date, task.Date)
	if err != nil {
		return err
	}

	status := schedule.ResolvedDayStatus{PersonID: task.PersonID, Status: schedule.StatusNotScheduled}
	for _, ds := range snap.DaySchedule(task.Date).Staff {
		if ds.PersonID == task.PersonID {
			status = ds
			break
		}
	}

	// Delivery transport is out of scope; the log line is the handoff.
	log.Printf("[Reminders] %s is %q on %s (hours %q)",
		task.PersonID, status.Status, task.Date, status.Hours)

	return rs.Store.MarkTaskSent(ctx, task.ID)
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.checkAndFire()
}
