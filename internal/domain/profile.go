package domain

import (
	"errors"
	"fmt"
	"time"
)

// SubscriptionStatus mirrors the billing provider's subscription states.
type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = ""
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
)

// Stats accumulates lifetime totals for a user.
type Stats struct {
	TotalActivities      int
	TotalDistanceKm      float64
	TotalEnergyGenerated float64
	CurrentStreak        int
	LastActivityDate     *time.Time
	JourneysCompleted    int
}

// RecordActivity folds one logged activity into the totals. The streak counts
// consecutive UTC days with at least one activity.
func (s *Stats) RecordActivity(startedAt time.Time, distanceKm, energy float64) {
	s.TotalActivities++
	s.TotalDistanceKm += distanceKm
	s.TotalEnergyGenerated += energy

	day := startedAt.UTC().Truncate(24 * time.Hour)
	switch {
	case s.LastActivityDate == nil:
		s.CurrentStreak = 1
	case day.Equal(s.LastActivityDate.Truncate(24 * time.Hour)):
		// Same day, streak unchanged.
	case day.Sub(s.LastActivityDate.Truncate(24*time.Hour)) == 24*time.Hour:
		s.CurrentStreak++
	default:
		s.CurrentStreak = 1
	}
	if s.LastActivityDate == nil || day.After(*s.LastActivityDate) {
		s.LastActivityDate = &day
	}
}

// Inventory holds the user's credits and consumable boosters.
type Inventory struct {
	Credits         int
	EnergyAmplifier int
	DecayInhibitor  int
	MultiCharge     int
}

var (
	// ErrBoosterUnavailable is returned when consuming a booster with zero stock.
	ErrBoosterUnavailable = errors.New("booster not available in inventory")
	// ErrInsufficientCredits rejects a purchase the user cannot afford.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// StoreItem is a purchasable consumable.
type StoreItem string

const (
	ItemEnergyAmplifier StoreItem = "energyAmplifier"
	ItemDecayInhibitor  StoreItem = "decayInhibitor"
	ItemMultiCharge     StoreItem = "multiCharge"
)

// storePrices lists credit costs per item.
var storePrices = map[StoreItem]int{
	ItemEnergyAmplifier: 100,
	ItemDecayInhibitor:  250,
	ItemMultiCharge:     500,
}

// Price returns the credit cost of an item, or false for an unknown item.
func (i StoreItem) Price() (int, bool) {
	price, ok := storePrices[i]
	return price, ok
}

// Consume removes one unit of the booster from stock.
func (inv *Inventory) Consume(b Booster) error {
	switch b {
	case BoosterNone:
		return nil
	case BoosterEnergyAmplifier:
		if inv.EnergyAmplifier <= 0 {
			return fmt.Errorf("%w: %s", ErrBoosterUnavailable, b)
		}
		inv.EnergyAmplifier--
	case BoosterMultiCharge:
		if inv.MultiCharge <= 0 {
			return fmt.Errorf("%w: %s", ErrBoosterUnavailable, b)
		}
		inv.MultiCharge--
	default:
		return fmt.Errorf("unknown booster %q", b)
	}
	return nil
}

// Purchase exchanges credits for one unit of a store item.
func (inv *Inventory) Purchase(item StoreItem) error {
	price, ok := item.Price()
	if !ok {
		return fmt.Errorf("unknown store item %q", item)
	}
	if inv.Credits < price {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientCredits, price, inv.Credits)
	}
	inv.Credits -= price
	switch item {
	case ItemEnergyAmplifier:
		inv.EnergyAmplifier++
	case ItemDecayInhibitor:
		inv.DecayInhibitor++
	case ItemMultiCharge:
		inv.MultiCharge++
	}
	return nil
}

// ConsumeDecayInhibitor removes one inhibitor from stock.
func (inv *Inventory) ConsumeDecayInhibitor() error {
	if inv.DecayInhibitor <= 0 {
		return fmt.Errorf("%w: %s", ErrBoosterUnavailable, ItemDecayInhibitor)
	}
	inv.DecayInhibitor--
	return nil
}

// Profile is the per-user account view owned by a single session.
type Profile struct {
	UserID             string
	Email              string
	DisplayName        string
	SubscriptionStatus SubscriptionStatus
	Stats              Stats
	Inventory          Inventory
}
