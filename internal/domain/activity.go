package domain

import (
	"fmt"
	"strings"
	"time"
)

// Validation bounds for a logged activity.
const (
	MinDurationMin = 1
	MaxDurationMin = 600
	MaxNotesLen    = 500
)

// Activity is the canonical append-only record of a logged workout together
// with its computed energy outcome. Immutable once persisted.
type Activity struct {
	ID             string
	TenantID       string
	UserID         string
	ActivityKind   string
	TargetCategory EnergyCategory
	StartedAt      time.Time
	DurationMin    int
	DistanceKm     *float64
	Intensity      Intensity
	Notes          string
	BaseEnergy     float64
	Efficiency     float64
	ActualEnergy   float64
	Booster        Booster
	CreatedAt      time.Time
}

// FieldErrors maps a field name to its validation message. Validation failures
// are reported per field, never as panics or a single opaque error.
type FieldErrors map[string]string

// Error implements error so FieldErrors can flow through error returns.
func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// LogActivityInput captures the payload from the API layer for a new activity.
type LogActivityInput struct {
	TenantID       string
	UserID         string
	ActivityKind   string
	TargetCategory string
	StartedAt      time.Time
	DurationMin    int
	DistanceKm     *float64
	Intensity      string
	Notes          string
	Booster        string
}

// Validate checks every field and collects messages per field.
func (in LogActivityInput) Validate() FieldErrors {
	errs := make(FieldErrors)

	if strings.TrimSpace(in.ActivityKind) == "" {
		errs["activity_kind"] = "activity kind is required"
	} else if _, ok := NaturalCategory(in.ActivityKind); !ok {
		errs["activity_kind"] = fmt.Sprintf("unknown activity kind %q", in.ActivityKind)
	}

	if strings.TrimSpace(in.TargetCategory) == "" {
		errs["target_category"] = "target energy category is required"
	} else if _, err := ParseCategory(in.TargetCategory); err != nil {
		errs["target_category"] = fmt.Sprintf("unknown energy category %q", in.TargetCategory)
	}

	if in.DurationMin < MinDurationMin || in.DurationMin > MaxDurationMin {
		errs["duration_min"] = fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMin, MaxDurationMin)
	}

	if in.DistanceKm != nil && *in.DistanceKm <= 0 {
		errs["distance_km"] = "distance must be positive"
	}

	if len(in.Notes) > MaxNotesLen {
		errs["notes"] = fmt.Sprintf("notes must be at most %d characters", MaxNotesLen)
	}

	if _, ok := Intensity(in.Intensity).Multiplier(); !ok {
		errs["intensity"] = fmt.Sprintf("intensity must be one of %s, %s, %s", IntensityLight, IntensityModerate, IntensityVigorous)
	}

	switch Booster(in.Booster) {
	case BoosterNone, BoosterEnergyAmplifier, BoosterMultiCharge:
	default:
		errs["booster"] = fmt.Sprintf("unknown booster %q", in.Booster)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
