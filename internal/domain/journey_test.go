package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLegs() []JourneyLeg {
	return []JourneyLeg{
		{ID: "leg-1", From: "London", To: "Paris", DistanceKm: 344, RequiredCategory: CategoryNautical, RequiredAmount: 3},
		{ID: "leg-2", From: "Paris", To: "Marseille", DistanceKm: 775, RequiredCategory: CategoryTerrestrial, RequiredAmount: 4},
		{ID: "leg-3", From: "Marseille", To: "Rome", DistanceKm: 521, RequiredCategory: CategoryTransport, RequiredAmount: 5},
	}
}

func TestStartJourneyActivatesFirstLegOnly(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	journey, err := StartJourney("tenant-1", "user-1", "j-1", "classic", testLegs(), now)
	require.NoError(t, err)

	require.Equal(t, JourneyStatusActive, journey.Status)
	require.Equal(t, 1, journey.CurrentDay)
	require.Equal(t, LegStatusActive, journey.Legs[0].Status)
	require.Equal(t, LegStatusLocked, journey.Legs[1].Status)
	require.Equal(t, LegStatusLocked, journey.Legs[2].Status)
}

func TestApplyProgressCompletesLegAndActivatesNext(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	journey, err := StartJourney("tenant-1", "user-1", "j-1", "classic", testLegs(), now)
	require.NoError(t, err)

	// Deployment sequence summing to exactly the 3.0 requirement.
	for _, amount := range []float64{1.0, 0.5, 1.5} {
		result, err := journey.ApplyProgress(amount, now.Add(time.Hour))
		require.NoError(t, err)
		if amount != 1.5 {
			require.Nil(t, result.CompletedLeg)
			continue
		}
		require.NotNil(t, result.CompletedLeg)
		require.Equal(t, "leg-1", result.CompletedLeg.ID)
		require.NotNil(t, result.ActivatedLeg)
		require.Equal(t, "leg-2", result.ActivatedLeg.ID)
		require.False(t, result.JourneyCompleted)
	}

	require.Equal(t, LegStatusCompleted, journey.Legs[0].Status)
	require.Equal(t, LegStatusActive, journey.Legs[1].Status)
	require.Equal(t, 2, journey.CurrentDay)
	require.Zero(t, journey.DeploymentsCount, "challenge counter resets with the new leg")
}

func TestApplyProgressOverflowDoesNotLeakIntoNextLeg(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	journey, err := StartJourney("tenant-1", "user-1", "j-1", "classic", testLegs(), now)
	require.NoError(t, err)

	result, err := journey.ApplyProgress(10, now)
	require.NoError(t, err)
	require.NotNil(t, result.CompletedLeg)
	require.Zero(t, journey.Legs[1].Progress)
}

func TestFinalLegCompletionIsTerminal(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	journey, err := StartJourney("tenant-1", "user-1", "j-1", "classic", testLegs(), now)
	require.NoError(t, err)

	for _, amount := range []float64{3, 4, 5} {
		_, err := journey.ApplyProgress(amount, now)
		require.NoError(t, err)
	}

	require.Equal(t, JourneyStatusCompleted, journey.Status)
	require.NotNil(t, journey.CompletedAt)
	require.Nil(t, journey.ActiveLeg())

	_, ok := journey.Challenge()
	require.False(t, ok)

	_, err = journey.ApplyProgress(1, now)
	require.ErrorIs(t, err, ErrJourneyCompleted)
}

func TestChallengeMirrorsActiveLeg(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	journey, err := StartJourney("tenant-1", "user-1", "j-1", "classic", testLegs(), now)
	require.NoError(t, err)

	_, err = journey.ApplyProgress(1.25, now)
	require.NoError(t, err)

	challenge, ok := journey.Challenge()
	require.True(t, ok)
	require.Equal(t, "leg-1", challenge.LegID)
	require.Equal(t, CategoryNautical, challenge.RequiredCategory)
	require.InDelta(t, 3.0, challenge.RequiredAmount, 1e-9)
	require.InDelta(t, 1.25, challenge.CurrentProgress, 1e-9)
	require.Equal(t, 1, challenge.DeploymentsCount)
}

func TestApplyProgressRejectsNegative(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	journey, err := StartJourney("tenant-1", "user-1", "j-1", "classic", testLegs(), now)
	require.NoError(t, err)

	_, err = journey.ApplyProgress(-0.5, now)
	require.Error(t, err)
}
