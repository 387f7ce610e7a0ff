package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStreakCountsConsecutiveDays(t *testing.T) {
	var stats Stats
	day1 := time.Date(2025, time.March, 1, 7, 0, 0, 0, time.UTC)

	stats.RecordActivity(day1, 5, 1)
	require.Equal(t, 1, stats.CurrentStreak)

	stats.RecordActivity(day1.Add(6*time.Hour), 3, 0.5)
	require.Equal(t, 1, stats.CurrentStreak, "same day does not extend the streak")

	stats.RecordActivity(day1.Add(24*time.Hour), 2, 0.5)
	require.Equal(t, 2, stats.CurrentStreak)

	stats.RecordActivity(day1.Add(5*24*time.Hour), 2, 0.5)
	require.Equal(t, 1, stats.CurrentStreak, "a gap resets the streak")

	require.Equal(t, 4, stats.TotalActivities)
	require.InDelta(t, 12.0, stats.TotalDistanceKm, 1e-9)
}

func TestRaidStatusLifecycle(t *testing.T) {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	raid := RaidEvent{
		ID:        "raid-1",
		Category:  CategoryTransport,
		StartTime: start,
		EndTime:   start.Add(48 * time.Hour),
		GoalKwh:   2,
		Status:    RaidStatusScheduled,
	}

	raid.RefreshStatus(start.Add(-time.Hour))
	require.Equal(t, RaidStatusScheduled, raid.Status)

	raid.RefreshStatus(start.Add(time.Hour))
	require.Equal(t, RaidStatusActive, raid.Status)

	_, err := raid.Contribute("user-1", CategoryTransport, 2, true, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, RaidStatusCompleted, raid.Status, "meeting the goal completes the raid")

	_, err = raid.Contribute("user-2", CategoryTransport, 1, true, start.Add(3*time.Hour))
	require.ErrorIs(t, err, ErrRaidNotActive)
}

func TestContributionBeforeWindowIsRejected(t *testing.T) {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	raid := RaidEvent{
		ID:        "raid-1",
		Category:  CategoryStrength,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		GoalKwh:   50,
		Status:    RaidStatusScheduled,
	}

	_, err := raid.Contribute("user-1", CategoryStrength, 1, true, start.Add(-time.Minute))
	require.ErrorIs(t, err, ErrRaidNotActive)
}
