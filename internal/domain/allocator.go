package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientReserve rejects a deployment offer exceeding the category's
// current balance. The request is refused whole: nothing is spent.
var ErrInsufficientReserve = errors.New("insufficient reserve balance")

// Offer is a user-chosen amount of one category to spend.
type Offer struct {
	Category EnergyCategory
	Amount   float64
}

// PlanEntry is one offer weighted by the efficiency table.
type PlanEntry struct {
	Category   EnergyCategory
	Amount     float64
	Efficiency float64
	Progress   float64
}

// DeploymentPlan is the validated, efficiency-weighted outcome of a set of offers.
type DeploymentPlan struct {
	Target        EnergyCategory
	Entries       []PlanEntry
	TotalDeployed float64
	TotalProgress float64
}

// BuildDeploymentPlan validates offers against the ledger and computes the
// progress each contributes toward the target category. Offers must be
// non-negative and within the category's current balance; contributions are
// never negative.
func BuildDeploymentPlan(offers []Offer, target EnergyCategory, ledger *Ledger) (DeploymentPlan, error) {
	plan := DeploymentPlan{Target: target}

	offered := make(map[EnergyCategory]float64, len(offers))
	for _, offer := range offers {
		if offer.Amount < 0 {
			return DeploymentPlan{}, fmt.Errorf("offer for %s: amount must not be negative", offer.Category)
		}
		if ledger.Reserve(offer.Category) == nil {
			return DeploymentPlan{}, fmt.Errorf("%w: %q", ErrUnknownCategory, offer.Category)
		}
		offered[offer.Category] += offer.Amount
	}

	for _, category := range Categories() {
		amount := offered[category]
		if amount == 0 {
			continue
		}
		if amount > ledger.Balance(category) {
			return DeploymentPlan{}, fmt.Errorf("%w: %s has %.2f, offered %.2f",
				ErrInsufficientReserve, category, ledger.Balance(category), amount)
		}
		efficiency := DeployEfficiency(category, target)
		entry := PlanEntry{
			Category:   category,
			Amount:     amount,
			Efficiency: efficiency,
			Progress:   amount * efficiency,
		}
		plan.Entries = append(plan.Entries, entry)
		plan.TotalDeployed += entry.Amount
		plan.TotalProgress += entry.Progress
	}

	if plan.TotalDeployed == 0 {
		return DeploymentPlan{}, errors.New("deployment requires at least one positive offer")
	}
	return plan, nil
}

// Execute spends the planned amounts from the ledger.
func (p DeploymentPlan) Execute(ledger *Ledger, now time.Time) {
	for _, entry := range p.Entries {
		ledger.Reserve(entry.Category).Deploy(entry.Amount, now)
	}
}
