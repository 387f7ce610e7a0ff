package domain

import (
	"errors"
	"fmt"
	"time"
)

// RaidStatus tracks a community raid through its window.
type RaidStatus string

const (
	RaidStatusScheduled RaidStatus = "scheduled"
	RaidStatusActive    RaidStatus = "active"
	RaidStatusCompleted RaidStatus = "completed"
)

var (
	// ErrRaidNotFound is returned when a raid cannot be located.
	ErrRaidNotFound = errors.New("raid not found")
	// ErrRaidNotActive rejects contributions outside the raid window.
	ErrRaidNotActive = errors.New("raid is not accepting contributions")
)

// RaidEvent is a time-boxed shared-goal event the whole community feeds.
type RaidEvent struct {
	ID               string
	TenantID         string
	Name             string
	Category         EnergyCategory
	StartTime        time.Time
	EndTime          time.Time
	GoalKwh          float64
	Narrative        string
	Status           RaidStatus
	CurrentProgress  float64
	ParticipantCount int
}

// RaidContribution records one user's deployment into a raid.
type RaidContribution struct {
	ID         string
	RaidID     string
	TenantID   string
	UserID     string
	Category   EnergyCategory
	Amount     float64
	Efficiency float64
	Progress   float64
	CreatedAt  time.Time
}

// LeaderboardEntry ranks a user's cumulative raid progress.
type LeaderboardEntry struct {
	Rank     int
	UserID   string
	Progress float64
}

// RefreshStatus derives the status from the raid window. Completed is sticky
// once the goal is met, even inside the window.
func (r *RaidEvent) RefreshStatus(now time.Time) {
	if r.Status == RaidStatusCompleted {
		return
	}
	switch {
	case r.CurrentProgress >= r.GoalKwh:
		r.Status = RaidStatusCompleted
	case now.Before(r.StartTime):
		r.Status = RaidStatusScheduled
	case now.After(r.EndTime):
		r.Status = RaidStatusCompleted
	default:
		r.Status = RaidStatusActive
	}
}

// Contribute applies an efficiency-weighted contribution to the raid. The
// caller has already validated and deducted the ledger amount.
func (r *RaidEvent) Contribute(userID string, category EnergyCategory, amount float64, firstForUser bool, now time.Time) (RaidContribution, error) {
	r.RefreshStatus(now)
	if r.Status != RaidStatusActive {
		return RaidContribution{}, fmt.Errorf("%w: status %s", ErrRaidNotActive, r.Status)
	}
	if amount <= 0 {
		return RaidContribution{}, errors.New("contribution amount must be positive")
	}

	efficiency := DeployEfficiency(category, r.Category)
	progress := amount * efficiency
	r.CurrentProgress += progress
	if firstForUser {
		r.ParticipantCount++
	}
	r.RefreshStatus(now)

	return RaidContribution{
		RaidID:     r.ID,
		TenantID:   r.TenantID,
		UserID:     userID,
		Category:   category,
		Amount:     amount,
		Efficiency: efficiency,
		Progress:   progress,
		CreatedAt:  now.UTC(),
	}, nil
}
