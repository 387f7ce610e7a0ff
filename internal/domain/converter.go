package domain

// Intensity grades the effort of a logged activity.
type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityVigorous Intensity = "vigorous"
)

// Multiplier returns the energy multiplier for the intensity, or false for an
// unknown grade.
func (i Intensity) Multiplier() (float64, bool) {
	switch i {
	case IntensityLight:
		return 0.5, true
	case IntensityModerate:
		return 1.0, true
	case IntensityVigorous:
		return 1.5, true
	}
	return 0, false
}

// Booster names a consumable applied to a single activity log.
type Booster string

const (
	BoosterNone Booster = ""
	// BoosterEnergyAmplifier doubles the converted energy.
	BoosterEnergyAmplifier Booster = "energyAmplifier"
	// BoosterMultiCharge waives the cross-category penalty: the charge lands at
	// full efficiency regardless of the activity's natural category.
	BoosterMultiCharge Booster = "multiCharge"
)

// distanceBonusPerKm is added to base energy for every kilometre covered.
const distanceBonusPerKm = 0.1

// Conversion is the outcome of mapping an activity onto an energy charge.
type Conversion struct {
	BaseEnergy   float64
	Efficiency   float64
	ActualEnergy float64
}

// ConversionInput carries the validated activity facts the converter needs.
type ConversionInput struct {
	DurationMin    int
	Intensity      Intensity
	DistanceKm     float64 // zero when no distance was recorded
	ActivityKind   string
	TargetCategory EnergyCategory
	Booster        Booster
}

// Convert computes the energy charge for an activity. Pure: the caller applies
// the ledger charge, inventory decrement, and stats update afterwards.
// Inputs are assumed validated (see LogActivityInput.Validate).
func Convert(in ConversionInput) Conversion {
	multiplier, _ := in.Intensity.Multiplier()
	base := float64(in.DurationMin)/60*multiplier + in.DistanceKm*distanceBonusPerKm

	efficiency := EfficiencyBase
	if natural, ok := NaturalCategory(in.ActivityKind); ok && natural == in.TargetCategory {
		efficiency = EfficiencyFull
	}
	if in.Booster == BoosterMultiCharge {
		efficiency = EfficiencyFull
	}

	actual := base * efficiency
	if in.Booster == BoosterEnergyAmplifier {
		actual *= 2
	}

	return Conversion{BaseEnergy: base, Efficiency: efficiency, ActualEnergy: actual}
}
