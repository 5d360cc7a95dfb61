package schedule_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/schedule-engine/schedule"
)

func TestCoverage_CountsScheduledAndOffPerDay(t *testing.T) {
	p3 := schedule.Person{ID: "p3", Name: "Riley Park"}
	p4 := schedule.Person{ID: "p4", Name: "Quinn Hale"}
	rules := []schedule.RecurringRule{weeklyRule("p2", []int{3}, "Off")}
	snap := snapshotWith([]schedule.Person{p1, p2, p3, p4}, rules,
		docFor("2024-02-07", schedule.OverrideEntry{TechnicianID: "p3", Status: "Sick"}))

	cov := snap.Coverage(schedule.MustParseDay("2024-02-07"), schedule.MustParseDay("2024-02-08"))
	require.Len(t, cov, 2)

	// Wednesday: p1 and p4 scheduled, p2 off by rule, p3 sick by override.
	assert.Equal(t, "2024-02-07", cov[0].Date.Key())
	assert.Equal(t, 2, cov[0].Scheduled)
	assert.Equal(t, 2, cov[0].Off)
	assert.Equal(t, 4, cov[0].Roster)
	assert.True(t, cov[0].Ratio.Equal(decimal.RequireFromString("0.5")), "got %s", cov[0].Ratio)

	// Thursday: everyone falls back to the weekday default.
	assert.Equal(t, 4, cov[1].Scheduled)
	assert.Equal(t, 0, cov[1].Off)
	assert.True(t, cov[1].Ratio.Equal(decimal.NewFromInt(1)))
}

func TestCoverage_HoursEntryCountsAsScheduled(t *testing.T) {
	// Saturday default is Off; a partial shift still counts as coverage.
	snap := snapshotWith([]schedule.Person{p1, p2}, nil,
		docFor("2024-02-10", schedule.OverrideEntry{TechnicianID: "p1", Status: "Off", Hours: "8am-12pm"}))

	cov := snap.Coverage(schedule.MustParseDay("2024-02-10"), schedule.MustParseDay("2024-02-10"))
	require.Len(t, cov, 1)
	assert.Equal(t, 1, cov[0].Scheduled)
	assert.Equal(t, 1, cov[0].Off)
}

func TestCoverage_CustomStatusCountsTowardNeither(t *testing.T) {
	snap := snapshotWith([]schedule.Person{p1}, nil,
		docFor("2024-02-07", schedule.OverrideEntry{TechnicianID: "p1", Status: "Training"}))

	cov := snap.Coverage(schedule.MustParseDay("2024-02-07"), schedule.MustParseDay("2024-02-07"))
	require.Len(t, cov, 1)
	assert.Equal(t, 0, cov[0].Scheduled)
	assert.Equal(t, 0, cov[0].Off)
	assert.Equal(t, 1, cov[0].Roster)
}

func TestCoverage_EmptyRosterHasZeroRatio(t *testing.T) {
	snap := snapshotWith(nil, nil)
	cov := snap.Coverage(schedule.MustParseDay("2024-02-07"), schedule.MustParseDay("2024-02-07"))
	require.Len(t, cov, 1)
	assert.True(t, cov[0].Ratio.IsZero())
}

func TestCoverage_RatioRounding(t *testing.T) {
	// 1 of 3 scheduled rounds to 0.3333.
	p3 := schedule.Person{ID: "p3", Name: "Riley Park"}
	rules := []schedule.RecurringRule{
		weeklyRule("p2", []int{3}, "Off"),
		weeklyRule("p3", []int{3}, "Vacation"),
	}
	snap := snapshotWith([]schedule.Person{p1, p2, p3}, rules)

	cov := snap.Coverage(schedule.MustParseDay("2024-02-07"), schedule.MustParseDay("2024-02-07"))
	require.Len(t, cov, 1)
	assert.Equal(t, "0.3333", cov[0].Ratio.String())
}
