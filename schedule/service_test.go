package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/schedule/store"
)

// =============================================================================
// FAILING PROVIDER FAKES
// =============================================================================

var errBackend = errors.New("backend unavailable")

type failingRoster struct{}

func (failingRoster) GetAll(context.Context) ([]schedule.Person, error) {
	return nil, errBackend
}

type failingRules struct{}

func (failingRules) GetAllForRoster(context.Context, []schedule.PersonID) ([]schedule.RecurringRule, error) {
	return nil, errBackend
}

type failingOverrides struct{}

func (failingOverrides) GetRange(context.Context, schedule.Day, schedule.Day) ([]schedule.DayDocument, error) {
	return nil, errBackend
}

func (failingOverrides) SubscribeRange(_, _ schedule.Day, _ func()) schedule.CancelFunc {
	return func() {}
}

// badDateOverrides returns one valid and one malformed document.
type badDateOverrides struct{}

func (badDateOverrides) GetRange(context.Context, schedule.Day, schedule.Day) ([]schedule.DayDocument, error) {
	return []schedule.DayDocument{
		{Date: "not-a-date", Notes: "garbage"},
		{Date: "2024-02-07", Notes: "kept"},
	}, nil
}

func (badDateOverrides) SubscribeRange(_, _ schedule.Day, _ func()) schedule.CancelFunc {
	return func() {}
}

func seededMemory(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	require.NoError(t, m.AddPerson(p1))
	require.NoError(t, m.AddPerson(p2))
	m.AddRule(weeklyRule("p1", []int{3}, "Off"))
	require.NoError(t, m.PutDocument(schedule.DayDocument{
		Date:      "2024-02-08",
		Notes:     "deep clean",
		StaffList: []schedule.OverrideEntry{{TechnicianID: "p2", Status: "Sick"}},
	}))
	return m
}

// =============================================================================
// LOAD RANGE
// =============================================================================

func TestLoadRange_AssemblesAllThreeLayers(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, m, m)

	snap, err := svc.LoadRange(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"))
	require.NoError(t, err)

	assert.Len(t, snap.Roster, 2)
	assert.Len(t, snap.Rules, 1)
	require.Contains(t, snap.Overrides, "2024-02-08")
	assert.Equal(t, "deep clean", snap.Overrides["2024-02-08"].Notes)

	// The assembled snapshot resolves end to end.
	assert.Equal(t, "Off", snap.Resolve(p1, schedule.MustParseDay("2024-02-07")).Status)
	assert.Equal(t, "Sick", snap.Resolve(p2, schedule.MustParseDay("2024-02-08")).Status)
}

func TestLoadRange_InvertedRangeRejected(t *testing.T) {
	m := store.NewMemory()
	svc := schedule.NewService(m, m, m)

	_, err := svc.LoadRange(context.Background(),
		schedule.MustParseDay("2024-02-10"), schedule.MustParseDay("2024-02-04"))
	assert.ErrorIs(t, err, schedule.ErrInvalidRange)
}

func TestLoadRange_RosterFailureDegradesToEmptySnapshot(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(failingRoster{}, m, m)

	snap, err := svc.LoadRange(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"))
	require.NoError(t, err, "a failed layer degrades, it does not fail the load")

	assert.Empty(t, snap.Roster)
	assert.Empty(t, snap.Rules, "no roster means no rule fetch")
	assert.Contains(t, snap.Overrides, "2024-02-08", "other layers still load")
}

func TestLoadRange_RuleFailureFallsBackToDefaults(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, failingRules{}, m)

	snap, err := svc.LoadRange(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"))
	require.NoError(t, err)

	assert.Len(t, snap.Roster, 2)
	assert.Empty(t, snap.Rules)
	// Without the Wednesday rule, p1 gets the weekday default.
	assert.Equal(t, "Scheduled", snap.Resolve(p1, schedule.MustParseDay("2024-02-07")).Status)
}

func TestLoadRange_OverrideFailureDropsOnlyOverrides(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, m, failingOverrides{})

	snap, err := svc.LoadRange(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"))
	require.NoError(t, err)

	assert.Empty(t, snap.Overrides)
	assert.Len(t, snap.Rules, 1, "rules still load")
}

func TestLoadRange_SkipsMalformedDocumentDates(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, m, badDateOverrides{})

	snap, err := svc.LoadRange(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"))
	require.NoError(t, err)

	require.Len(t, snap.Overrides, 1)
	assert.Equal(t, "kept", snap.Overrides["2024-02-07"].Notes)
}

// =============================================================================
// WATCH
// =============================================================================

func waitForSnapshot(t *testing.T, ch <-chan *schedule.Snapshot) *schedule.Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot delivery")
		return nil
	}
}

func TestWatch_DeliversInitialSnapshotAndReloadsOnChange(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, m, m)

	snaps := make(chan *schedule.Snapshot, 4)
	cancel, err := svc.Watch(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"),
		func(s *schedule.Snapshot) { snaps <- s })
	require.NoError(t, err)
	defer cancel()

	first := waitForSnapshot(t, snaps)
	assert.NotContains(t, first.Overrides, "2024-02-09")

	// WHEN: an override lands inside the watched range
	require.NoError(t, m.PutDocument(schedule.DayDocument{
		Date:      "2024-02-09",
		StaffList: []schedule.OverrideEntry{{TechnicianID: "p1", Status: "Vacation"}},
	}))

	// THEN: a fresh snapshot arrives with the new document
	second := waitForSnapshot(t, snaps)
	require.Contains(t, second.Overrides, "2024-02-09")
	assert.Equal(t, "Vacation", second.Resolve(p1, schedule.MustParseDay("2024-02-09")).Status)
}

func TestWatch_IgnoresChangesOutsideRange(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, m, m)

	snaps := make(chan *schedule.Snapshot, 4)
	cancel, err := svc.Watch(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"),
		func(s *schedule.Snapshot) { snaps <- s })
	require.NoError(t, err)
	defer cancel()

	waitForSnapshot(t, snaps)

	// A write in a different month must not trigger a reload.
	require.NoError(t, m.PutDocument(schedule.DayDocument{Date: "2024-03-15", Notes: "elsewhere"}))

	select {
	case <-snaps:
		t.Fatal("received a reload for an out-of-range change")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatch_NewRangeSupersedesOld(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, m, m)

	oldSnaps := make(chan *schedule.Snapshot, 4)
	_, err := svc.Watch(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"),
		func(s *schedule.Snapshot) { oldSnaps <- s })
	require.NoError(t, err)

	newSnaps := make(chan *schedule.Snapshot, 4)
	cancel, err := svc.Watch(context.Background(),
		schedule.MustParseDay("2024-03-01"), schedule.MustParseDay("2024-03-31"),
		func(s *schedule.Snapshot) { newSnaps <- s })
	require.NoError(t, err)
	defer cancel()

	snap := waitForSnapshot(t, newSnaps)
	assert.Equal(t, "2024-03-01", snap.From.Key())

	// Writes to the old range no longer reach the old watcher.
	drained := len(oldSnaps)
	for i := 0; i < drained; i++ {
		<-oldSnaps
	}
	require.NoError(t, m.PutDocument(schedule.DayDocument{Date: "2024-02-05", Notes: "stale range"}))
	select {
	case <-oldSnaps:
		t.Fatal("superseded watcher still receiving snapshots")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatch_CancelStopsDelivery(t *testing.T) {
	m := seededMemory(t)
	svc := schedule.NewService(m, m, m)

	snaps := make(chan *schedule.Snapshot, 4)
	cancel, err := svc.Watch(context.Background(),
		schedule.MustParseDay("2024-02-04"), schedule.MustParseDay("2024-02-10"),
		func(s *schedule.Snapshot) { snaps <- s })
	require.NoError(t, err)

	waitForSnapshot(t, snaps)
	cancel()

	require.NoError(t, m.PutDocument(schedule.DayDocument{Date: "2024-02-06", Notes: "after cancel"}))
	select {
	case <-snaps:
		t.Fatal("received a snapshot after cancel")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatch_InvertedRangeRejected(t *testing.T) {
	m := store.NewMemory()
	svc := schedule.NewService(m, m, m)

	_, err := svc.Watch(context.Background(),
		schedule.MustParseDay("2024-02-10"), schedule.MustParseDay("2024-02-04"),
		func(*schedule.Snapshot) {})
	assert.ErrorIs(t, err, schedule.ErrInvalidRange)
}
