package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"example.com/voyage/internal/events"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrJourneyInProgress rejects starting a journey while one is active.
	ErrJourneyInProgress = errors.New("journey already in progress")
)

// Session aggregates the state one user mutates atomically: their ledger,
// journey, and profile. No sharing, no concurrent writers.
type Session struct {
	TenantID string
	UserID   string
	Ledger   Ledger
	Journey  *Journey // nil until a journey is started
	Profile  Profile
}

// NewSession seeds empty per-user state.
func NewSession(tenantID, userID string, now time.Time) *Session {
	return &Session{
		TenantID: tenantID,
		UserID:   userID,
		Ledger:   NewLedger(now),
		Profile:  Profile{UserID: userID},
	}
}

// Event pairs an outbox event type with its payload. Repositories record
// events in the same transaction as the state they describe.
type Event struct {
	Type        string
	AggregateID string
	Payload     any
}

// Cursor models the activity-history pagination token.
type Cursor struct {
	StartedAt time.Time
	ID        string
}

// SessionRepository persists per-user session state.
type SessionRepository interface {
	// Load returns the session, seeding defaults for a first-time user.
	Load(ctx context.Context, tenantID, userID string) (*Session, error)
	// Save writes the session plus, optionally, a new activity record and
	// outbox events, atomically.
	Save(ctx context.Context, session *Session, activity *Activity, evts []Event) error
}

// ActivityRepository reads the append-only activity history.
type ActivityRepository interface {
	Get(ctx context.Context, tenantID, activityID string) (*Activity, error)
	ListByUser(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]Activity, *Cursor, error)
}

// RaidRepository persists community raid state.
type RaidRepository interface {
	List(ctx context.Context, tenantID string) ([]RaidEvent, error)
	GetRaid(ctx context.Context, tenantID, raidID string) (*RaidEvent, error)
	HasContribution(ctx context.Context, tenantID, raidID, userID string) (bool, error)
	// SaveContribution writes the updated session ledger, raid, contribution,
	// and outbox events atomically.
	SaveContribution(ctx context.Context, session *Session, raid *RaidEvent, contribution RaidContribution, evts []Event) error
	Leaderboard(ctx context.Context, tenantID, raidID string, limit int) ([]LeaderboardEntry, error)
}

// JourneyCatalog supplies leg templates for starting a journey.
type JourneyCatalog interface {
	JourneyLegs(catalogID string) ([]JourneyLeg, error)
}

// RaidNotifier receives raid snapshots after accepted contributions.
type RaidNotifier interface {
	RaidProgress(raid RaidEvent)
}

// Service orchestrates all session mutations.
type Service struct {
	sessions   SessionRepository
	activities ActivityRepository
	raids      RaidRepository
	catalog    JourneyCatalog
	notifier   RaidNotifier
	locks      *sessionLocks
	now        func() time.Time
}

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithRaidNotifier attaches a live progress sink.
func WithRaidNotifier(n RaidNotifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// NewService constructs a Service.
func NewService(sessions SessionRepository, activities ActivityRepository, raids RaidRepository, catalog JourneyCatalog, opts ...ServiceOption) *Service {
	s := &Service{
		sessions:   sessions,
		activities: activities,
		raids:      raids,
		catalog:    catalog,
		locks:      newSessionLocks(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogActivity validates, converts, and records one activity: decay is brought
// current, the target reserve is charged, stats accumulate, and the activity
// plus its events persist in one transaction. Validation failures come back as
// FieldErrors.
func (s *Service) LogActivity(ctx context.Context, input LogActivityInput) (*Activity, error) {
	if errs := input.Validate(); errs != nil {
		return nil, errs
	}

	unlock := s.locks.acquire(input.TenantID, input.UserID)
	defer unlock()

	session, err := s.sessions.Load(ctx, input.TenantID, input.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session.Ledger.ApplyDecay(now)

	booster := Booster(input.Booster)
	if err := session.Profile.Inventory.Consume(booster); err != nil {
		return nil, err
	}

	category, _ := ParseCategory(input.TargetCategory)
	distance := 0.0
	if input.DistanceKm != nil {
		distance = *input.DistanceKm
	}

	conversion := Convert(ConversionInput{
		DurationMin:    input.DurationMin,
		Intensity:      Intensity(input.Intensity),
		DistanceKm:     distance,
		ActivityKind:   input.ActivityKind,
		TargetCategory: category,
		Booster:        booster,
	})

	startedAt := input.StartedAt.UTC()
	if startedAt.IsZero() {
		startedAt = now
	}

	activity := Activity{
		ID:             uuid.NewString(),
		TenantID:       input.TenantID,
		UserID:         input.UserID,
		ActivityKind:   input.ActivityKind,
		TargetCategory: category,
		StartedAt:      startedAt,
		DurationMin:    input.DurationMin,
		DistanceKm:     input.DistanceKm,
		Intensity:      Intensity(input.Intensity),
		Notes:          input.Notes,
		BaseEnergy:     conversion.BaseEnergy,
		Efficiency:     conversion.Efficiency,
		ActualEnergy:   conversion.ActualEnergy,
		Booster:        booster,
		CreatedAt:      now,
	}

	session.Ledger.Reserve(category).Charge(conversion.ActualEnergy, now)
	session.Profile.Stats.RecordActivity(startedAt, distance, conversion.ActualEnergy)

	evts := []Event{
		{
			Type:        events.TypeActivityLogged,
			AggregateID: activity.ID,
			Payload: events.ActivityLogged{
				ActivityID:     activity.ID,
				TenantID:       activity.TenantID,
				UserID:         activity.UserID,
				ActivityKind:   activity.ActivityKind,
				TargetCategory: string(activity.TargetCategory),
				StartedAt:      activity.StartedAt,
				DurationMin:    activity.DurationMin,
				ActualEnergy:   activity.ActualEnergy,
				Version:        "v1",
			},
		},
		{
			Type:        events.TypeEnergyCharged,
			AggregateID: activity.ID,
			Payload: events.EnergyCharged{
				TenantID:   activity.TenantID,
				UserID:     activity.UserID,
				Category:   string(category),
				Amount:     activity.ActualEnergy,
				Balance:    session.Ledger.Balance(category),
				OccurredAt: now,
			},
		},
	}

	if err := s.sessions.Save(ctx, session, &activity, evts); err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetActivity fetches one history record.
func (s *Service) GetActivity(ctx context.Context, tenantID, activityID string) (*Activity, error) {
	activity, err := s.activities.Get(ctx, tenantID, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// ListActivities pages through the append-only history, newest first.
func (s *Service) ListActivities(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]Activity, *Cursor, error) {
	return s.activities.ListByUser(ctx, tenantID, userID, cursor, limit)
}

// Reserves brings decay current and returns the ledger.
func (s *Service) Reserves(ctx context.Context, tenantID, userID string) (Ledger, error) {
	unlock := s.locks.acquire(tenantID, userID)
	defer unlock()

	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return Ledger{}, err
	}
	session.Ledger.ApplyDecay(s.now())
	if err := s.sessions.Save(ctx, session, nil, nil); err != nil {
		return Ledger{}, err
	}
	return session.Ledger, nil
}

// ApplyDecayInhibitor consumes one inhibitor and exempts a reserve from decay
// for 24 hours.
func (s *Service) ApplyDecayInhibitor(ctx context.Context, tenantID, userID string, category EnergyCategory) error {
	unlock := s.locks.acquire(tenantID, userID)
	defer unlock()

	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	reserve := session.Ledger.Reserve(category)
	if reserve == nil {
		return ErrUnknownCategory
	}
	now := s.now().UTC()
	session.Ledger.ApplyDecay(now)
	if err := session.Profile.Inventory.ConsumeDecayInhibitor(); err != nil {
		return err
	}
	reserve.PauseDecay(now.Add(24 * time.Hour))
	return s.sessions.Save(ctx, session, nil, nil)
}

// StartJourney builds per-user legs from the catalog; the first leg activates.
// A journey already in progress cannot be restarted.
func (s *Service) StartJourney(ctx context.Context, tenantID, userID, catalogID string) (*Journey, error) {
	unlock := s.locks.acquire(tenantID, userID)
	defer unlock()

	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if session.Journey != nil && session.Journey.Status == JourneyStatusActive {
		return nil, ErrJourneyInProgress
	}

	legs, err := s.catalog.JourneyLegs(catalogID)
	if err != nil {
		return nil, err
	}
	for i := range legs {
		legs[i].ID = uuid.NewString()
	}

	journey, err := StartJourney(tenantID, userID, uuid.NewString(), catalogID, legs, s.now())
	if err != nil {
		return nil, err
	}
	session.Journey = journey

	if err := s.sessions.Save(ctx, session, nil, nil); err != nil {
		return nil, err
	}
	return journey, nil
}

// Journey returns the session's journey state.
func (s *Service) Journey(ctx context.Context, tenantID, userID string) (*Journey, error) {
	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if session.Journey == nil {
		return nil, ErrNoActiveJourney
	}
	return session.Journey, nil
}

// Challenge derives the active-leg view.
func (s *Service) Challenge(ctx context.Context, tenantID, userID string) (Challenge, error) {
	journey, err := s.Journey(ctx, tenantID, userID)
	if err != nil {
		return Challenge{}, err
	}
	challenge, ok := journey.Challenge()
	if !ok {
		return Challenge{}, ErrNoActiveJourney
	}
	return challenge, nil
}

// DeploymentResult reports what one deployment changed.
type DeploymentResult struct {
	Plan             DeploymentPlan
	Challenge        *Challenge
	CompletedLeg     *JourneyLeg
	ActivatedLeg     *JourneyLeg
	JourneyCompleted bool
}

// DeployEnergy spends reserves against the active leg. The plan is validated
// against post-decay balances before anything is deducted; leg completion and
// the follow-on activation happen in the same update.
func (s *Service) DeployEnergy(ctx context.Context, tenantID, userID string, offers []Offer) (*DeploymentResult, error) {
	unlock := s.locks.acquire(tenantID, userID)
	defer unlock()

	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if session.Journey == nil {
		return nil, ErrNoActiveJourney
	}
	leg := session.Journey.ActiveLeg()
	if leg == nil {
		return nil, ErrJourneyCompleted
	}

	now := s.now().UTC()
	session.Ledger.ApplyDecay(now)

	plan, err := BuildDeploymentPlan(offers, leg.RequiredCategory, &session.Ledger)
	if err != nil {
		return nil, err
	}
	plan.Execute(&session.Ledger, now)

	progress, err := session.Journey.ApplyProgress(plan.TotalProgress, now)
	if err != nil {
		return nil, err
	}

	var evts []Event
	if progress.CompletedLeg != nil {
		evts = append(evts, Event{
			Type:        events.TypeLegCompleted,
			AggregateID: session.Journey.ID,
			Payload: events.LegCompleted{
				TenantID:   tenantID,
				UserID:     userID,
				JourneyID:  session.Journey.ID,
				LegID:      progress.CompletedLeg.ID,
				Position:   progress.CompletedLeg.Position,
				From:       progress.CompletedLeg.From,
				To:         progress.CompletedLeg.To,
				OccurredAt: now,
			},
		})
	}
	if progress.JourneyCompleted {
		session.Profile.Stats.JourneysCompleted++
		evts = append(evts, Event{
			Type:        events.TypeJourneyCompleted,
			AggregateID: session.Journey.ID,
			Payload: events.JourneyCompleted{
				TenantID:   tenantID,
				UserID:     userID,
				JourneyID:  session.Journey.ID,
				Legs:       len(session.Journey.Legs),
				OccurredAt: now,
			},
		})
	}

	if err := s.sessions.Save(ctx, session, nil, evts); err != nil {
		return nil, err
	}

	result := &DeploymentResult{
		Plan:             plan,
		CompletedLeg:     progress.CompletedLeg,
		ActivatedLeg:     progress.ActivatedLeg,
		JourneyCompleted: progress.JourneyCompleted,
	}
	if challenge, ok := session.Journey.Challenge(); ok {
		result.Challenge = &challenge
	}
	return result, nil
}

// Raids lists raids with statuses refreshed against the clock.
func (s *Service) Raids(ctx context.Context, tenantID string) ([]RaidEvent, error) {
	raids, err := s.raids.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range raids {
		raids[i].RefreshStatus(now)
	}
	return raids, nil
}

// ContributeToRaid deploys reserve energy into a community raid.
func (s *Service) ContributeToRaid(ctx context.Context, tenantID, userID, raidID string, category EnergyCategory, amount float64) (*RaidContribution, *RaidEvent, error) {
	unlock := s.locks.acquire(tenantID, userID)
	defer unlock()

	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return nil, nil, err
	}
	reserve := session.Ledger.Reserve(category)
	if reserve == nil {
		return nil, nil, ErrUnknownCategory
	}

	now := s.now().UTC()
	session.Ledger.ApplyDecay(now)
	if amount <= 0 || amount > reserve.Current {
		return nil, nil, ErrInsufficientReserve
	}

	raid, err := s.raids.GetRaid(ctx, tenantID, raidID)
	if err != nil {
		return nil, nil, err
	}
	if raid == nil {
		return nil, nil, ErrRaidNotFound
	}

	contributed, err := s.raids.HasContribution(ctx, tenantID, raidID, userID)
	if err != nil {
		return nil, nil, err
	}

	contribution, err := raid.Contribute(userID, category, amount, !contributed, now)
	if err != nil {
		return nil, nil, err
	}
	contribution.ID = uuid.NewString()
	reserve.Deploy(amount, now)

	evts := []Event{{
		Type:        events.TypeRaidContributionRecorded,
		AggregateID: raid.ID,
		Payload: events.RaidContributionRecorded{
			ContributionID: contribution.ID,
			RaidID:         raid.ID,
			TenantID:       tenantID,
			UserID:         userID,
			Category:       string(category),
			Amount:         contribution.Amount,
			Efficiency:     contribution.Efficiency,
			Progress:       contribution.Progress,
			RaidProgress:   raid.CurrentProgress,
			OccurredAt:     now,
		},
	}}

	if err := s.raids.SaveContribution(ctx, session, raid, contribution, evts); err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		s.notifier.RaidProgress(*raid)
	}
	return &contribution, raid, nil
}

// RaidLeaderboard ranks cumulative contributions for one raid.
func (s *Service) RaidLeaderboard(ctx context.Context, tenantID, raidID string, limit int) ([]LeaderboardEntry, error) {
	return s.raids.Leaderboard(ctx, tenantID, raidID, limit)
}

// Profile returns the session profile.
func (s *Service) Profile(ctx context.Context, tenantID, userID string) (Profile, error) {
	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return Profile{}, err
	}
	return session.Profile, nil
}

// PurchaseItem spends credits on a consumable.
func (s *Service) PurchaseItem(ctx context.Context, tenantID, userID string, item StoreItem) (Inventory, error) {
	unlock := s.locks.acquire(tenantID, userID)
	defer unlock()

	session, err := s.sessions.Load(ctx, tenantID, userID)
	if err != nil {
		return Inventory{}, err
	}
	if err := session.Profile.Inventory.Purchase(item); err != nil {
		return Inventory{}, err
	}
	if err := s.sessions.Save(ctx, session, nil, nil); err != nil {
		return Inventory{}, err
	}
	return session.Profile.Inventory, nil
}
