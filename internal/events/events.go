// Package events defines the payloads published through the outbox.
package events

import "time"

// Event types routed by the outbox catalog.
const (
	TypeActivityLogged           = "activity.logged"
	TypeEnergyCharged            = "energy.charged"
	TypeLegCompleted             = "leg.completed"
	TypeJourneyCompleted         = "journey.completed"
	TypeRaidContributionRecorded = "raid.contribution_recorded"
)

// ActivityLogged is emitted when a new activity is accepted.
type ActivityLogged struct {
	ActivityID     string    `json:"activity_id"`
	TenantID       string    `json:"tenant_id"`
	UserID         string    `json:"user_id"`
	ActivityKind   string    `json:"activity_kind"`
	TargetCategory string    `json:"target_category"`
	StartedAt      time.Time `json:"started_at"`
	DurationMin    int       `json:"duration_min"`
	ActualEnergy   float64   `json:"actual_energy"`
	Version        string    `json:"version"`
}

// EnergyCharged records a ledger charge for downstream projections.
type EnergyCharged struct {
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Balance    float64   `json:"balance"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LegCompleted marks a journey leg transition to completed.
type LegCompleted struct {
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	JourneyID  string    `json:"journey_id"`
	LegID      string    `json:"leg_id"`
	Position   int       `json:"position"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// JourneyCompleted marks the terminal journey state.
type JourneyCompleted struct {
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	JourneyID  string    `json:"journey_id"`
	Legs       int       `json:"legs"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RaidContributionRecorded is emitted for every accepted raid contribution.
type RaidContributionRecorded struct {
	ContributionID string    `json:"contribution_id"`
	RaidID         string    `json:"raid_id"`
	TenantID       string    `json:"tenant_id"`
	UserID         string    `json:"user_id"`
	Category       string    `json:"category"`
	Amount         float64   `json:"amount"`
	Efficiency     float64   `json:"efficiency"`
	Progress       float64   `json:"progress"`
	RaidProgress   float64   `json:"raid_progress"`
	OccurredAt     time.Time `json:"occurred_at"`
}
