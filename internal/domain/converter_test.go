package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertNaturalMatch(t *testing.T) {
	out := Convert(ConversionInput{
		DurationMin:    60,
		Intensity:      IntensityModerate,
		ActivityKind:   "Running",
		TargetCategory: CategoryTerrestrial,
	})

	require.InDelta(t, 1.0, out.BaseEnergy, 1e-9)
	require.InDelta(t, 1.0, out.Efficiency, 1e-9)
	require.InDelta(t, 1.0, out.ActualEnergy, 1e-9)
}

func TestConvertCrossCharge(t *testing.T) {
	out := Convert(ConversionInput{
		DurationMin:    60,
		Intensity:      IntensityModerate,
		ActivityKind:   "Running",
		TargetCategory: CategoryNautical,
	})

	require.InDelta(t, 1.0, out.BaseEnergy, 1e-9)
	require.InDelta(t, 0.5, out.Efficiency, 1e-9)
	require.InDelta(t, 0.5, out.ActualEnergy, 1e-9)
}

func TestConvertDistanceBonusAndIntensity(t *testing.T) {
	out := Convert(ConversionInput{
		DurationMin:    30,
		Intensity:      IntensityVigorous,
		DistanceKm:     5,
		ActivityKind:   "Cycling",
		TargetCategory: CategoryTransport,
	})

	// 30/60 * 1.5 + 5 * 0.1
	require.InDelta(t, 1.25, out.BaseEnergy, 1e-9)
	require.InDelta(t, 1.25, out.ActualEnergy, 1e-9)

	light := Convert(ConversionInput{
		DurationMin:    30,
		Intensity:      IntensityLight,
		DistanceKm:     5,
		ActivityKind:   "Cycling",
		TargetCategory: CategoryTransport,
	})
	require.InDelta(t, 0.75, light.BaseEnergy, 1e-9)
}

func TestConvertBoosters(t *testing.T) {
	amplified := Convert(ConversionInput{
		DurationMin:    60,
		Intensity:      IntensityModerate,
		ActivityKind:   "Running",
		TargetCategory: CategoryTerrestrial,
		Booster:        BoosterEnergyAmplifier,
	})
	require.InDelta(t, 2.0, amplified.ActualEnergy, 1e-9)

	multi := Convert(ConversionInput{
		DurationMin:    60,
		Intensity:      IntensityModerate,
		ActivityKind:   "Running",
		TargetCategory: CategoryNautical,
		Booster:        BoosterMultiCharge,
	})
	require.InDelta(t, 1.0, multi.Efficiency, 1e-9, "multi-charge waives the mismatch penalty")
	require.InDelta(t, 1.0, multi.ActualEnergy, 1e-9)
}

func TestValidateReportsPerField(t *testing.T) {
	distance := -1.0
	in := LogActivityInput{
		ActivityKind:   "Quidditch",
		TargetCategory: "aerial",
		DurationMin:    700,
		DistanceKm:     &distance,
		Intensity:      "extreme",
		Notes:          string(make([]byte, 501)),
	}

	errs := in.Validate()
	require.Len(t, errs, 6)
	for _, field := range []string{"activity_kind", "target_category", "duration_min", "distance_km", "intensity", "notes"} {
		require.Contains(t, errs, field)
	}
}

func TestValidateAcceptsCatalogActivity(t *testing.T) {
	in := LogActivityInput{
		ActivityKind:   "Swimming",
		TargetCategory: "nautical",
		DurationMin:    45,
		Intensity:      "moderate",
	}
	require.Nil(t, in.Validate())
}
