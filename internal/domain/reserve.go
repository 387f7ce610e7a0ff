package domain

import "time"

// Default reserve tuning, mirrored by new-session seeding.
const (
	DefaultReserveMax      = 10.0
	DefaultDecayRatePerDay = 0.05
)

// Reserve is one typed energy pool. Invariant: 0 <= Current <= Max, maintained
// by Charge, Deploy, and ApplyDecay being the only mutation paths.
//
// Decay is computed from the balance at the last charge or deploy (the
// anchor), so the outcome depends only on total elapsed time, never on how
// often ApplyDecay runs. Callers bring decay current before charging or
// deploying; the Service does this on every mutation path.
type Reserve struct {
	Current         float64
	Max             float64
	DecayRatePerDay float64
	// LastUpdated is the instant of the last charge or deploy. It is the decay
	// anchor and is deliberately not advanced by ApplyDecay.
	LastUpdated time.Time
	// AnchorBalance is the balance as of LastUpdated.
	AnchorBalance float64
	// DecayPausedUntil marks the end of a decay-inhibitor window. Elapsed time
	// before this instant never counts toward decay.
	DecayPausedUntil time.Time
}

// NewReserve seeds an empty reserve with default tuning.
func NewReserve(now time.Time) Reserve {
	return Reserve{
		Max:             DefaultReserveMax,
		DecayRatePerDay: DefaultDecayRatePerDay,
		LastUpdated:     now.UTC(),
	}
}

// Charge adds energy, clamped at Max, and re-anchors decay at now.
// Negative amounts are ignored.
func (r *Reserve) Charge(amount float64, now time.Time) {
	if amount <= 0 {
		return
	}
	r.Current = min(r.Current+amount, r.Max)
	r.rebase(now)
}

// Deploy removes energy, clamped at zero. Callers are expected to cap the
// request at Current first; the clamp is the last-line guard, not the contract.
func (r *Reserve) Deploy(amount float64, now time.Time) {
	if amount <= 0 {
		return
	}
	r.Current = max(r.Current-amount, 0)
	r.rebase(now)
}

func (r *Reserve) rebase(now time.Time) {
	r.AnchorBalance = r.Current
	r.LastUpdated = now.UTC()
}

// ApplyDecay recomputes the balance from the anchor: anchor * rate *
// (elapsedHours / 24) is subtracted, floored at zero. Calling it twice over
// two half-windows yields exactly the one-call result for the full window.
func (r *Reserve) ApplyDecay(now time.Time) {
	now = now.UTC()
	start := r.LastUpdated
	if r.DecayPausedUntil.After(start) {
		start = r.DecayPausedUntil
	}
	if !now.After(start) {
		return
	}

	elapsedHours := now.Sub(start).Hours()
	decay := r.AnchorBalance * r.DecayRatePerDay * (elapsedHours / 24)
	r.Current = max(r.AnchorBalance-decay, 0)
}

// PauseDecay exempts the reserve from decay until the given instant.
func (r *Reserve) PauseDecay(until time.Time) {
	until = until.UTC()
	if until.After(r.DecayPausedUntil) {
		r.DecayPausedUntil = until
	}
}

// Ledger holds one reserve per category. The fields are deliberately explicit
// rather than keyed by string so no unrecognized category can exist.
type Ledger struct {
	Nautical    Reserve
	Terrestrial Reserve
	Transport   Reserve
	Strength    Reserve
}

// NewLedger seeds all four reserves.
func NewLedger(now time.Time) Ledger {
	return Ledger{
		Nautical:    NewReserve(now),
		Terrestrial: NewReserve(now),
		Transport:   NewReserve(now),
		Strength:    NewReserve(now),
	}
}

// Reserve returns the pool for a category, or nil for an unknown one.
func (l *Ledger) Reserve(category EnergyCategory) *Reserve {
	switch category {
	case CategoryNautical:
		return &l.Nautical
	case CategoryTerrestrial:
		return &l.Terrestrial
	case CategoryTransport:
		return &l.Transport
	case CategoryStrength:
		return &l.Strength
	}
	return nil
}

// ApplyDecay advances every reserve to now.
func (l *Ledger) ApplyDecay(now time.Time) {
	for _, category := range Categories() {
		l.Reserve(category).ApplyDecay(now)
	}
}

// Balance returns the current amount for a category.
func (l *Ledger) Balance(category EnergyCategory) float64 {
	return l.Reserve(category).Current
}
