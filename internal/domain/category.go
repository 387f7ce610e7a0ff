// Package domain defines the energy accounting, journey, and raid rules for the voyage service.
package domain

import (
	"errors"
	"fmt"
)

// EnergyCategory is one of the four typed reserve pools fed by matching activities.
type EnergyCategory string

const (
	CategoryNautical    EnergyCategory = "nautical"
	CategoryTerrestrial EnergyCategory = "terrestrial"
	CategoryTransport   EnergyCategory = "transport"
	CategoryStrength    EnergyCategory = "strength"
)

// ErrUnknownCategory is returned when parsing a string that names no category.
var ErrUnknownCategory = errors.New("unknown energy category")

// Categories lists every category in canonical order.
func Categories() [4]EnergyCategory {
	return [4]EnergyCategory{CategoryNautical, CategoryTerrestrial, CategoryTransport, CategoryStrength}
}

// ParseCategory converts an external string into an EnergyCategory.
func ParseCategory(value string) (EnergyCategory, error) {
	switch EnergyCategory(value) {
	case CategoryNautical, CategoryTerrestrial, CategoryTransport, CategoryStrength:
		return EnergyCategory(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, value)
}

// naturalCategories maps each known activity kind to the category it charges at full efficiency.
var naturalCategories = map[string]EnergyCategory{
	"Rowing":   CategoryNautical,
	"Swimming": CategoryNautical,
	"Sailing":  CategoryNautical,
	"Kayaking": CategoryNautical,

	"Running": CategoryTerrestrial,
	"Walking": CategoryTerrestrial,
	"Hiking":  CategoryTerrestrial,
	"Jogging": CategoryTerrestrial,

	"Cycling":       CategoryTransport,
	"Skateboarding": CategoryTransport,
	"Rollerblading": CategoryTransport,
	"E-biking":      CategoryTransport,

	"Weightlifting": CategoryStrength,
	"CrossFit":      CategoryStrength,
	"Calisthenics":  CategoryStrength,
	"Yoga":          CategoryStrength,
}

// NaturalCategory returns the category an activity kind naturally charges,
// and whether the kind is part of the catalog at all.
func NaturalCategory(activityKind string) (EnergyCategory, bool) {
	category, ok := naturalCategories[activityKind]
	return category, ok
}

// ActivityKinds returns the catalog of known activity kinds for a category.
func ActivityKinds(category EnergyCategory) []string {
	kinds := make([]string, 0, 4)
	for kind, natural := range naturalCategories {
		if natural == category {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// relatedPairs holds the category pairs that deploy at partial credit.
// Strength is deliberately absent: it is unrelated to every other category.
var relatedPairs = map[[2]EnergyCategory]struct{}{
	{CategoryNautical, CategoryTerrestrial}: {},
	{CategoryNautical, CategoryTransport}:   {},
	{CategoryTerrestrial, CategoryTransport}: {},
}

// Deployment efficiency tiers.
const (
	EfficiencyFull    = 1.0
	EfficiencyRelated = 0.75
	EfficiencyBase    = 0.5
)

// DeployEfficiency returns the multiplier applied when energy of one category
// is spent against a requirement of another.
func DeployEfficiency(offered, target EnergyCategory) float64 {
	if offered == target {
		return EfficiencyFull
	}
	if _, ok := relatedPairs[[2]EnergyCategory{offered, target}]; ok {
		return EfficiencyRelated
	}
	if _, ok := relatedPairs[[2]EnergyCategory{target, offered}]; ok {
		return EfficiencyRelated
	}
	return EfficiencyBase
}
