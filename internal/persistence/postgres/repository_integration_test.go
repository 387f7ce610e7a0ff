//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/voyage/internal/domain"
	"example.com/voyage/internal/events"
)

func startRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("voyage"),
		postgrescontainer.WithUsername("voyage"),
		postgrescontainer.WithPassword("voyage"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return NewRepository(pool)
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	// First load seeds defaults.
	session, err := repo.Load(ctx, tenantID, userID)
	require.NoError(t, err)
	require.Equal(t, userID, session.UserID)
	require.Nil(t, session.Journey)

	session.Ledger.Terrestrial.Charge(3.5, now)
	session.Profile.Stats.TotalActivities = 1
	session.Journey = &domain.Journey{
		ID:        uuid.NewString(),
		CatalogID: "classic-80",
		Status:    domain.JourneyStatusActive,
		StartedAt: now,
		Legs: []domain.JourneyLeg{{
			ID:               uuid.NewString(),
			Position:         0,
			From:             "London",
			To:               "Paris",
			RequiredCategory: domain.CategoryNautical,
			RequiredAmount:   3.0,
			Status:           domain.LegStatusActive,
		}},
	}

	require.NoError(t, repo.Save(ctx, session, nil, nil))

	reloaded, err := repo.Load(ctx, tenantID, userID)
	require.NoError(t, err)
	require.InDelta(t, 3.5, reloaded.Ledger.Terrestrial.Current, 1e-9)
	require.Equal(t, 1, reloaded.Profile.Stats.TotalActivities)
	require.NotNil(t, reloaded.Journey)
	require.Equal(t, "classic-80", reloaded.Journey.CatalogID)
	require.Len(t, reloaded.Journey.Legs, 1)
	require.Equal(t, "Paris", reloaded.Journey.Legs[0].To)
}

func TestSaveRecordsActivityAndOutbox(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	session, err := repo.Load(ctx, tenantID, userID)
	require.NoError(t, err)
	session.Ledger.Terrestrial.Charge(1.0, now)

	activity := &domain.Activity{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		UserID:         userID,
		ActivityKind:   "Running",
		TargetCategory: domain.CategoryTerrestrial,
		StartedAt:      now,
		DurationMin:    60,
		Intensity:      domain.IntensityModerate,
		BaseEnergy:     1.0,
		Efficiency:     1.0,
		ActualEnergy:   1.0,
		CreatedAt:      now,
	}
	evts := []domain.Event{
		{
			Type:        events.TypeActivityLogged,
			AggregateID: activity.ID,
			Payload: events.ActivityLogged{
				ActivityID:     activity.ID,
				TenantID:       tenantID,
				UserID:         userID,
				ActivityKind:   "Running",
				TargetCategory: string(domain.CategoryTerrestrial),
				StartedAt:      now,
				DurationMin:    60,
				ActualEnergy:   1.0,
				Version:        "v1",
			},
		},
		{
			Type:        events.TypeEnergyCharged,
			AggregateID: activity.ID,
			Payload: events.EnergyCharged{
				TenantID:   tenantID,
				UserID:     userID,
				Category:   string(domain.CategoryTerrestrial),
				Amount:     1.0,
				Balance:    1.0,
				OccurredAt: now,
			},
		},
	}

	require.NoError(t, repo.Save(ctx, session, activity, evts))

	stored, err := repo.Get(ctx, tenantID, activity.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Running", stored.ActivityKind)
	require.InDelta(t, 1.0, stored.ActualEnergy, 1e-9)

	// Activities are invisible to other tenants.
	other, err := repo.Get(ctx, uuid.NewString(), activity.ID)
	require.NoError(t, err)
	require.Nil(t, other)

	var pending int
	err = repo.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE tenant_id = $1 AND published_at IS NULL`,
		tenantID).Scan(&pending)
	require.NoError(t, err)
	require.Equal(t, 2, pending)
}

func TestListByUserPaginates(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	session, err := repo.Load(ctx, tenantID, userID)
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 5; i++ {
		activity := &domain.Activity{
			ID:             uuid.NewString(),
			TenantID:       tenantID,
			UserID:         userID,
			ActivityKind:   "Running",
			TargetCategory: domain.CategoryTerrestrial,
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
			DurationMin:    30,
			Intensity:      domain.IntensityLight,
			BaseEnergy:     0.25,
			Efficiency:     1.0,
			ActualEnergy:   0.25,
			CreatedAt:      base,
		}
		ids = append(ids, activity.ID)
		require.NoError(t, repo.Save(ctx, session, activity, nil))
	}

	first, cursor, err := repo.ListByUser(ctx, tenantID, userID, nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, cursor)
	// Newest first.
	require.Equal(t, ids[4], first[0].ID)

	rest, _, err := repo.ListByUser(ctx, tenantID, userID, cursor, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)

	seen := map[string]bool{}
	for _, a := range append(first, rest...) {
		require.False(t, seen[a.ID], "activity %s returned twice", a.ID)
		seen[a.ID] = true
	}
	require.Len(t, seen, 5)
}

func TestRaidContributionFlow(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	tenantID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	raid := domain.RaidEvent{
		ID:        "raid-channel",
		TenantID:  tenantID,
		Name:      "Channel Convoy",
		Category:  domain.CategoryNautical,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		GoalKwh:   100,
		Status:    domain.RaidStatusActive,
	}
	require.NoError(t, repo.SeedRaids(ctx, tenantID, []domain.RaidEvent{raid}))
	// Seeding twice must not duplicate.
	require.NoError(t, repo.SeedRaids(ctx, tenantID, []domain.RaidEvent{raid}))

	raids, err := repo.List(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, raids, 1)

	contributors := []string{uuid.NewString(), uuid.NewString()}
	progress := []float64{2.5, 4.0}
	for i, userID := range contributors {
		session, err := repo.Load(ctx, tenantID, userID)
		require.NoError(t, err)

		stored, err := repo.GetRaid(ctx, tenantID, raid.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)

		contributed, err := repo.HasContribution(ctx, tenantID, raid.ID, userID)
		require.NoError(t, err)
		require.False(t, contributed)

		stored.CurrentProgress += progress[i]
		stored.ParticipantCount++

		contribution := domain.RaidContribution{
			ID:         uuid.NewString(),
			RaidID:     raid.ID,
			TenantID:   tenantID,
			UserID:     userID,
			Category:   domain.CategoryNautical,
			Amount:     progress[i],
			Efficiency: 1.0,
			Progress:   progress[i],
			CreatedAt:  now,
		}
		evts := []domain.Event{{
			Type:        events.TypeRaidContributionRecorded,
			AggregateID: raid.ID,
			Payload: events.RaidContributionRecorded{
				ContributionID: contribution.ID,
				RaidID:         raid.ID,
				TenantID:       tenantID,
				UserID:         userID,
				Category:       string(domain.CategoryNautical),
				Amount:         progress[i],
				Efficiency:     1.0,
				Progress:       progress[i],
				RaidProgress:   stored.CurrentProgress,
				OccurredAt:     now,
			},
		}}
		require.NoError(t, repo.SaveContribution(ctx, session, stored, contribution, evts))
	}

	final, err := repo.GetRaid(ctx, tenantID, raid.ID)
	require.NoError(t, err)
	require.InDelta(t, 6.5, final.CurrentProgress, 1e-9)
	require.Equal(t, 2, final.ParticipantCount)

	board, err := repo.Leaderboard(ctx, tenantID, raid.ID, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, 1, board[0].Rank)
	require.InDelta(t, 4.0, board[0].Progress, 1e-9)
	require.True(t, sort.SliceIsSorted(board, func(i, j int) bool {
		return board[i].Progress > board[j].Progress
	}))
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	migrationsDir := resolvePath(t, "../../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, path := range files {
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr, fmt.Sprintf("migration %s", path))
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
