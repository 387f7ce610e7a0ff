// Package memory holds an in-process store used by tests and by local
// development without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/voyage/internal/domain"
)

// Store implements the domain repository interfaces against process memory.
// Raids can be pre-seeded per tenant via SeedRaids.
type Store struct {
	mu            sync.RWMutex
	sessions      map[string]*domain.Session
	activities    map[string]map[string]domain.Activity
	activityOrder map[string][]string
	raids         map[string]map[string]*domain.RaidEvent
	contributions map[string][]domain.RaidContribution
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		sessions:      make(map[string]*domain.Session),
		activities:    make(map[string]map[string]domain.Activity),
		activityOrder: make(map[string][]string),
		raids:         make(map[string]map[string]*domain.RaidEvent),
		contributions: make(map[string][]domain.RaidContribution),
	}
}

func sessionKey(tenantID, userID string) string {
	return tenantID + ":" + userID
}

// Load returns a copy of the stored session or a fresh one for new users.
func (s *Store) Load(ctx context.Context, tenantID, userID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[sessionKey(tenantID, userID)]
	if !ok {
		return domain.NewSession(tenantID, userID, time.Now()), nil
	}
	return cloneSession(stored), nil
}

// Save stores the session and appends the activity. Events are accepted and
// dropped since there is no broker in this mode.
func (s *Store) Save(ctx context.Context, session *domain.Session, activity *domain.Activity, evts []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionKey(session.TenantID, session.UserID)] = cloneSession(session)

	if activity != nil {
		if s.activities[session.TenantID] == nil {
			s.activities[session.TenantID] = make(map[string]domain.Activity)
		}
		s.activities[session.TenantID][activity.ID] = *activity
		key := sessionKey(session.TenantID, session.UserID)
		s.activityOrder[key] = append(s.activityOrder[key], activity.ID)
	}
	return nil
}

// Get retrieves an activity by ID, or nil when absent.
func (s *Store) Get(ctx context.Context, tenantID, activityID string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[tenantID][activityID]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

// ListByUser returns the user's activities newest first.
func (s *Store) ListByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.activityOrder[sessionKey(tenantID, userID)]
	all := make([]domain.Activity, 0, len(ids))
	for _, id := range ids {
		all = append(all, s.activities[tenantID][id])
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartedAt.Equal(all[j].StartedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].StartedAt.After(all[j].StartedAt)
	})

	start := 0
	if cursor != nil {
		for i, activity := range all {
			if activity.StartedAt.Before(cursor.StartedAt) ||
				(activity.StartedAt.Equal(cursor.StartedAt) && activity.ID < cursor.ID) {
				start = i
				break
			}
			start = len(all)
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	var next *domain.Cursor
	if len(page) == limit && end < len(all) {
		last := page[len(page)-1]
		next = &domain.Cursor{StartedAt: last.StartedAt, ID: last.ID}
	}
	return page, next, nil
}

// SeedRaids registers raids for a tenant, skipping ones already present.
func (s *Store) SeedRaids(ctx context.Context, tenantID string, raids []domain.RaidEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raids[tenantID] == nil {
		s.raids[tenantID] = make(map[string]*domain.RaidEvent)
	}
	for _, raid := range raids {
		if _, exists := s.raids[tenantID][raid.ID]; exists {
			continue
		}
		stored := raid
		stored.TenantID = tenantID
		s.raids[tenantID][raid.ID] = &stored
	}
	return nil
}

// List returns all raids for a tenant ordered by start time.
func (s *Store) List(ctx context.Context, tenantID string) ([]domain.RaidEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raids := make([]domain.RaidEvent, 0, len(s.raids[tenantID]))
	for _, raid := range s.raids[tenantID] {
		raids = append(raids, *raid)
	}
	sort.Slice(raids, func(i, j int) bool { return raids[i].StartTime.Before(raids[j].StartTime) })
	return raids, nil
}

// GetRaid retrieves a raid by ID, or nil when absent.
func (s *Store) GetRaid(ctx context.Context, tenantID, raidID string) (*domain.RaidEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raid, ok := s.raids[tenantID][raidID]
	if !ok {
		return nil, nil
	}
	copied := *raid
	return &copied, nil
}

// HasContribution reports whether the user already joined the raid.
func (s *Store) HasContribution(ctx context.Context, tenantID, raidID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.contributions[tenantID+":"+raidID] {
		if c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// SaveContribution writes session, raid, and contribution together.
func (s *Store) SaveContribution(ctx context.Context, session *domain.Session, raid *domain.RaidEvent, contribution domain.RaidContribution, evts []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionKey(session.TenantID, session.UserID)] = cloneSession(session)

	if s.raids[raid.TenantID] == nil {
		s.raids[raid.TenantID] = make(map[string]*domain.RaidEvent)
	}
	stored := *raid
	s.raids[raid.TenantID][raid.ID] = &stored

	key := contribution.TenantID + ":" + contribution.RaidID
	s.contributions[key] = append(s.contributions[key], contribution)
	return nil
}

// Leaderboard ranks users by cumulative progress on a raid.
func (s *Store) Leaderboard(ctx context.Context, tenantID, raidID string, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]float64)
	for _, c := range s.contributions[tenantID+":"+raidID] {
		totals[c.UserID] += c.Progress
	}

	entries := make([]domain.LeaderboardEntry, 0, len(totals))
	for userID, progress := range totals {
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Progress: progress})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Progress == entries[j].Progress {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].Progress > entries[j].Progress
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func cloneSession(session *domain.Session) *domain.Session {
	copied := *session
	if session.Journey != nil {
		journey := *session.Journey
		journey.Legs = append([]domain.JourneyLeg(nil), session.Journey.Legs...)
		copied.Journey = &journey
	}
	return &copied
}
