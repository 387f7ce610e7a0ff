package domain

import (
	"errors"
	"time"
)

// LegStatus tracks a leg through its one-way lifecycle.
type LegStatus string

const (
	LegStatusLocked    LegStatus = "locked"
	LegStatusActive    LegStatus = "active"
	LegStatusCompleted LegStatus = "completed"
)

// JourneyStatus tracks the overall journey. Completed is terminal.
type JourneyStatus string

const (
	JourneyStatusActive    JourneyStatus = "active"
	JourneyStatusCompleted JourneyStatus = "completed"
)

var (
	// ErrNoActiveJourney is returned when an operation needs a journey in progress.
	ErrNoActiveJourney = errors.New("no active journey")
	// ErrJourneyCompleted rejects mutations after the journey reached its terminal state.
	ErrJourneyCompleted = errors.New("journey already completed")
)

// JourneyLeg is one segment of the journey with a typed energy requirement.
// Invariant: legs before the active one are completed, legs after it are locked.
type JourneyLeg struct {
	ID               string
	Position         int
	From             string
	To               string
	DistanceKm       float64
	RequiredCategory EnergyCategory
	RequiredAmount   float64
	Progress         float64
	Status           LegStatus
	Title            string
	Description      string
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// Journey is the per-user expedition state.
type Journey struct {
	ID               string
	TenantID         string
	UserID           string
	CatalogID        string
	Status           JourneyStatus
	CurrentDay       int
	CurrentLeg       int
	DeploymentsCount int
	StartedAt        time.Time
	CompletedAt      *time.Time
	Legs             []JourneyLeg
}

// Challenge is the transient view of the active leg used by dashboards.
type Challenge struct {
	LegID            string
	RequiredCategory EnergyCategory
	RequiredAmount   float64
	CurrentProgress  float64
	DeploymentsCount int
	StartedAt        time.Time
}

// StartJourney builds a fresh journey from ordered legs: the first leg becomes
// active, the rest stay locked.
func StartJourney(tenantID, userID, journeyID, catalogID string, legs []JourneyLeg, now time.Time) (*Journey, error) {
	if len(legs) == 0 {
		return nil, errors.New("journey requires at least one leg")
	}
	now = now.UTC()
	for i := range legs {
		legs[i].Position = i
		legs[i].Progress = 0
		legs[i].Status = LegStatusLocked
		legs[i].StartedAt = nil
		legs[i].CompletedAt = nil
	}
	legs[0].Status = LegStatusActive
	legs[0].StartedAt = &now

	return &Journey{
		ID:         journeyID,
		TenantID:   tenantID,
		UserID:     userID,
		CatalogID:  catalogID,
		Status:     JourneyStatusActive,
		CurrentDay: 1,
		CurrentLeg: 0,
		StartedAt:  now,
		Legs:       legs,
	}, nil
}

// ActiveLeg returns the leg currently accepting progress, or nil when the
// journey is complete.
func (j *Journey) ActiveLeg() *JourneyLeg {
	if j.Status == JourneyStatusCompleted {
		return nil
	}
	if j.CurrentLeg < 0 || j.CurrentLeg >= len(j.Legs) {
		return nil
	}
	return &j.Legs[j.CurrentLeg]
}

// Challenge derives the active-leg view.
func (j *Journey) Challenge() (Challenge, bool) {
	leg := j.ActiveLeg()
	if leg == nil {
		return Challenge{}, false
	}
	startedAt := j.StartedAt
	if leg.StartedAt != nil {
		startedAt = *leg.StartedAt
	}
	return Challenge{
		LegID:            leg.ID,
		RequiredCategory: leg.RequiredCategory,
		RequiredAmount:   leg.RequiredAmount,
		CurrentProgress:  leg.Progress,
		DeploymentsCount: j.DeploymentsCount,
		StartedAt:        startedAt,
	}, true
}

// ProgressResult reports what a progress application changed.
type ProgressResult struct {
	CompletedLeg     *JourneyLeg
	ActivatedLeg     *JourneyLeg
	JourneyCompleted bool
}

// ApplyProgress adds progress to the active leg. When the leg's requirement is
// met, the leg completes and the next leg (if any) activates in the same
// update; completing the final leg moves the journey to its terminal state.
// Transitions are one-way: no status ever regresses.
func (j *Journey) ApplyProgress(amount float64, now time.Time) (ProgressResult, error) {
	if j.Status == JourneyStatusCompleted {
		return ProgressResult{}, ErrJourneyCompleted
	}
	leg := j.ActiveLeg()
	if leg == nil {
		return ProgressResult{}, ErrNoActiveJourney
	}
	if amount < 0 {
		return ProgressResult{}, errors.New("progress amount must not be negative")
	}

	now = now.UTC()
	j.DeploymentsCount++
	leg.Progress = min(leg.Progress+amount, leg.RequiredAmount)

	if leg.Progress < leg.RequiredAmount {
		return ProgressResult{}, nil
	}

	leg.Status = LegStatusCompleted
	leg.CompletedAt = &now
	result := ProgressResult{CompletedLeg: leg}

	j.CurrentDay++
	j.CurrentLeg++
	j.DeploymentsCount = 0

	if j.CurrentLeg >= len(j.Legs) {
		j.Status = JourneyStatusCompleted
		j.CompletedAt = &now
		result.JourneyCompleted = true
		return result, nil
	}

	next := &j.Legs[j.CurrentLeg]
	next.Status = LegStatusActive
	next.StartedAt = &now
	result.ActivatedLeg = next
	return result, nil
}
