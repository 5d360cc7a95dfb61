package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/store/sqlite"
)

func TestReminderScheduler_FiresDueTasksAndMarksSent(t *testing.T) {
	// GIVEN: a due task and a not-yet-due task
	h, _ := newTestAPI(t)
	ctx := context.Background()

	require.NoError(t, h.Store.AddPerson(ctx, schedule.Person{ID: "p1", Name: "Avery Banks"}))
	require.NoError(t, h.Store.AddTask(ctx, sqlite.Task{
		ID: "t-due", PersonID: "p1",
		Date:  schedule.MustParseDay("2024-02-07"),
		DueAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, h.Store.AddTask(ctx, sqlite.Task{
		ID: "t-future", PersonID: "p1",
		Date:  schedule.MustParseDay("2024-02-08"),
		DueAt: time.Now().Add(time.Hour),
	}))

	rs := NewReminderScheduler(h.Store, h)

	// WHEN: a check runs
	rs.RunNow()

	// THEN: only the due task is consumed
	due, err := h.Store.DueTasks(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "t-future", due[0].ID)
}

func TestReminderScheduler_FiresForUnknownPersonToo(t *testing.T) {
	// A task whose person has since left the roster still completes;
	// the resolved status is simply "Not Scheduled".
	h, _ := newTestAPI(t)
	ctx := context.Background()

	require.NoError(t, h.Store.AddTask(ctx, sqlite.Task{
		ID: "t1", PersonID: "departed",
		Date:  schedule.MustParseDay("2024-02-07"),
		DueAt: time.Now().Add(-time.Minute),
	}))

	rs := NewReminderScheduler(h.Store, h)
	rs.RunNow()

	due, err := h.Store.DueTasks(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestReminderScheduler_DisabledDoesNotStart(t *testing.T) {
	h, _ := newTestAPI(t)
	rs := NewReminderScheduler(h.Store, h)
	rs.Enabled = false

	rs.Start()
	rs.Stop() // no ticker was created; Stop is a no-op
}

func TestReminderScheduler_StartStop(t *testing.T) {
	h, _ := newTestAPI(t)
	rs := NewReminderScheduler(h.Store, h)
	rs.CheckInterval = 10 * time.Millisecond

	rs.Start()
	time.Sleep(30 * time.Millisecond)
	rs.Stop()
}
