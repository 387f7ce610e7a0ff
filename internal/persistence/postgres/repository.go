// Package postgres provides pgx-backed persistence for sessions, activities,
// raids, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/voyage/internal/domain"
	"example.com/voyage/internal/events"
	"example.com/voyage/internal/observability"
)

// Repository provides Postgres-backed persistence for the voyage service.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func setTenant(ctx context.Context, tx pgx.Tx, tenantID string) error {
	_, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID)
	return err
}

// Load returns the session for a user, seeding defaults on first contact.
func (r *Repository) Load(ctx context.Context, tenantID, userID string) (*domain.Session, error) {
	const query = `SELECT ledger, journey, profile FROM sessions WHERE tenant_id=$1 AND user_id=$2`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	var ledgerRaw, journeyRaw, profileRaw []byte
	row := tx.QueryRow(ctx, query, tenantID, userID)
	if err := row.Scan(&ledgerRaw, &journeyRaw, &profileRaw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := tx.Commit(ctx); err != nil {
				return nil, err
			}
			return domain.NewSession(tenantID, userID, time.Now()), nil
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	session := &domain.Session{TenantID: tenantID, UserID: userID}
	if err := json.Unmarshal(ledgerRaw, &session.Ledger); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	if len(journeyRaw) > 0 && string(journeyRaw) != "null" {
		session.Journey = &domain.Journey{}
		if err := json.Unmarshal(journeyRaw, session.Journey); err != nil {
			return nil, fmt.Errorf("decode journey: %w", err)
		}
	}
	if err := json.Unmarshal(profileRaw, &session.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return session, nil
}

// Save upserts the session and, in the same transaction, appends the optional
// activity record and outbox events.
func (r *Repository) Save(ctx context.Context, session *domain.Session, activity *domain.Activity, evts []domain.Event) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, session.TenantID); err != nil {
		return err
	}

	if err = upsertSession(ctx, tx, session); err != nil {
		return err
	}

	if activity != nil {
		if err = insertActivity(ctx, tx, *activity); err != nil {
			return err
		}
	}

	for _, evt := range evts {
		if err = insertOutbox(ctx, tx, session.TenantID, evt); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	if activity != nil {
		observability.RecordActivityPersisted(activity.CreatedAt)
	}
	return nil
}

func upsertSession(ctx context.Context, tx pgx.Tx, session *domain.Session) error {
	ledgerRaw, err := json.Marshal(session.Ledger)
	if err != nil {
		return err
	}
	journeyRaw, err := json.Marshal(session.Journey)
	if err != nil {
		return err
	}
	profileRaw, err := json.Marshal(session.Profile)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO sessions (tenant_id, user_id, ledger, journey, profile, updated_at)
        VALUES ($1,$2,$3,$4,$5,NOW())
        ON CONFLICT (tenant_id, user_id)
        DO UPDATE SET ledger=EXCLUDED.ledger, journey=EXCLUDED.journey, profile=EXCLUDED.profile, updated_at=NOW()`

	_, err = tx.Exec(ctx, stmt, session.TenantID, session.UserID, ledgerRaw, journeyRaw, profileRaw)
	return err
}

func insertActivity(ctx context.Context, tx pgx.Tx, activity domain.Activity) error {
	const stmt = `INSERT INTO activities (activity_id, tenant_id, user_id, activity_kind, target_category,
            started_at, duration_min, distance_km, intensity, notes, base_energy, efficiency, actual_energy, booster, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err := tx.Exec(ctx, stmt,
		activity.ID,
		activity.TenantID,
		activity.UserID,
		activity.ActivityKind,
		activity.TargetCategory,
		activity.StartedAt,
		activity.DurationMin,
		activity.DistanceKm,
		activity.Intensity,
		activity.Notes,
		activity.BaseEnergy,
		activity.Efficiency,
		activity.ActualEnergy,
		nullIfEmpty(string(activity.Booster)),
		activity.CreatedAt,
	)
	return err
}

func insertOutbox(ctx context.Context, tx pgx.Tx, tenantID string, evt domain.Event) error {
	body, err := json.Marshal(evt.Payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[evt.Type]
	if !ok {
		return fmt.Errorf("unknown event type: %s", evt.Type)
	}

	dedupeKey := fmt.Sprintf("%s:%s:%d", evt.AggregateID, evt.Type, time.Now().UnixNano())

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		tenantID,
		meta.AggregateType,
		evt.AggregateID,
		evt.Type,
		meta.Topic,
		meta.SchemaSubject,
		meta.PartitionKeyFn(tenantID, evt),
		body,
		dedupeKey,
	)
	return err
}

const activityColumns = `activity_id, tenant_id, user_id, activity_kind, target_category, started_at,
    duration_min, distance_km, intensity, notes, base_energy, efficiency, actual_energy, booster, created_at`

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var activity domain.Activity
	var booster *string
	if err := row.Scan(
		&activity.ID,
		&activity.TenantID,
		&activity.UserID,
		&activity.ActivityKind,
		&activity.TargetCategory,
		&activity.StartedAt,
		&activity.DurationMin,
		&activity.DistanceKm,
		&activity.Intensity,
		&activity.Notes,
		&activity.BaseEnergy,
		&activity.Efficiency,
		&activity.ActualEnergy,
		&booster,
		&activity.CreatedAt,
	); err != nil {
		return nil, err
	}
	if booster != nil {
		activity.Booster = domain.Booster(*booster)
	}
	return &activity, nil
}

// Get retrieves an activity by ID.
func (r *Repository) Get(ctx context.Context, tenantID, activityID string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE tenant_id=$1 AND activity_id=$2`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	activity, err := scanActivity(tx.QueryRow(ctx, query, tenantID, activityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := tx.Commit(ctx); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return activity, nil
}

// ListByUser returns activities for a user ordered newest first.
func (r *Repository) ListByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	args := []interface{}{tenantID, userID, limit}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE tenant_id=$1 AND user_id=$2`

	if cursor != nil {
		query += ` AND (started_at, activity_id) < ($4, $5)`
		args = append(args, cursor.StartedAt, cursor.ID)
	}

	query += ` ORDER BY started_at DESC, activity_id DESC LIMIT $3`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Activity, 0, limit)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{StartedAt: last.StartedAt, ID: last.ID}
	}
	return results, nextCursor, nil
}

const raidColumns = `raid_id, tenant_id, name, category, start_time, end_time, goal_kwh, narrative, status, current_progress, participant_count`

func scanRaid(row pgx.Row) (*domain.RaidEvent, error) {
	var raid domain.RaidEvent
	if err := row.Scan(
		&raid.ID,
		&raid.TenantID,
		&raid.Name,
		&raid.Category,
		&raid.StartTime,
		&raid.EndTime,
		&raid.GoalKwh,
		&raid.Narrative,
		&raid.Status,
		&raid.CurrentProgress,
		&raid.ParticipantCount,
	); err != nil {
		return nil, err
	}
	return &raid, nil
}

// List returns every raid for a tenant ordered by start time.
func (r *Repository) List(ctx context.Context, tenantID string) ([]domain.RaidEvent, error) {
	query := `SELECT ` + raidColumns + ` FROM raids WHERE tenant_id=$1 ORDER BY start_time`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raids := make([]domain.RaidEvent, 0)
	for rows.Next() {
		raid, err := scanRaid(rows)
		if err != nil {
			return nil, err
		}
		raids = append(raids, *raid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return raids, nil
}

// GetRaid retrieves one raid. Implements domain.RaidRepository.Get.
func (r *Repository) GetRaid(ctx context.Context, tenantID, raidID string) (*domain.RaidEvent, error) {
	query := `SELECT ` + raidColumns + ` FROM raids WHERE tenant_id=$1 AND raid_id=$2`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	raid, err := scanRaid(tx.QueryRow(ctx, query, tenantID, raidID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := tx.Commit(ctx); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return raid, nil
}

// HasContribution reports whether the user already contributed to the raid.
func (r *Repository) HasContribution(ctx context.Context, tenantID, raidID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM raid_contributions WHERE tenant_id=$1 AND raid_id=$2 AND user_id=$3)`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, query, tenantID, raidID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, tx.Commit(ctx)
}

// SaveContribution writes the session ledger, raid state, contribution record,
// and outbox events in one transaction.
func (r *Repository) SaveContribution(ctx context.Context, session *domain.Session, raid *domain.RaidEvent, contribution domain.RaidContribution, evts []domain.Event) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, session.TenantID); err != nil {
		return err
	}

	if err = upsertSession(ctx, tx, session); err != nil {
		return err
	}

	const updateRaid = `UPDATE raids SET status=$3, current_progress=$4, participant_count=$5 WHERE tenant_id=$1 AND raid_id=$2`
	if _, err = tx.Exec(ctx, updateRaid, raid.TenantID, raid.ID, raid.Status, raid.CurrentProgress, raid.ParticipantCount); err != nil {
		return err
	}

	const insertContribution = `INSERT INTO raid_contributions (contribution_id, raid_id, tenant_id, user_id, category, amount, efficiency, progress, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err = tx.Exec(ctx, insertContribution,
		contribution.ID,
		contribution.RaidID,
		contribution.TenantID,
		contribution.UserID,
		contribution.Category,
		contribution.Amount,
		contribution.Efficiency,
		contribution.Progress,
		contribution.CreatedAt,
	); err != nil {
		return err
	}

	for _, evt := range evts {
		if err = insertOutbox(ctx, tx, session.TenantID, evt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Leaderboard ranks users by cumulative raid progress.
func (r *Repository) Leaderboard(ctx context.Context, tenantID, raidID string, limit int) ([]domain.LeaderboardEntry, error) {
	const query = `SELECT user_id, SUM(progress) AS total
        FROM raid_contributions WHERE tenant_id=$1 AND raid_id=$2
        GROUP BY user_id ORDER BY total DESC LIMIT $3`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, tenantID, raidID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	rank := 1
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Progress); err != nil {
			return nil, err
		}
		entry.Rank = rank
		rank++
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entries, nil
}

// SeedRaids inserts raids that do not exist yet. Used at boot to materialise
// the catalog's raid schedule for a tenant.
func (r *Repository) SeedRaids(ctx context.Context, tenantID string, raids []domain.RaidEvent) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, tenantID); err != nil {
		return err
	}

	const stmt = `INSERT INTO raids (raid_id, tenant_id, name, category, start_time, end_time, goal_kwh, narrative, status, current_progress, participant_count)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (tenant_id, raid_id) DO NOTHING`

	for _, raid := range raids {
		if _, err = tx.Exec(ctx, stmt,
			raid.ID, tenantID, raid.Name, raid.Category, raid.StartTime, raid.EndTime,
			raid.GoalKwh, raid.Narrative, raid.Status, raid.CurrentProgress, raid.ParticipantCount,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	AggregateType  string
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(tenantID string, evt domain.Event) string
}

func partitionByAggregate(tenantID string, evt domain.Event) string {
	return fmt.Sprintf("%s:%s", tenantID, evt.AggregateID)
}

var eventCatalog = map[string]EventMetadata{
	events.TypeActivityLogged: {
		AggregateType: "activity",
		Topic:         "activity_events",
		SchemaSubject: "activity_events-value",
		PartitionKeyFn: func(tenantID string, evt domain.Event) string {
			return partitionByAggregate(tenantID, evt)
		},
	},
	events.TypeEnergyCharged: {
		AggregateType: "ledger",
		Topic:         "energy_events",
		SchemaSubject: "energy_events-value",
		PartitionKeyFn: func(tenantID string, evt domain.Event) string {
			return partitionByAggregate(tenantID, evt)
		},
	},
	events.TypeLegCompleted: {
		AggregateType: "journey",
		Topic:         "journey_events",
		SchemaSubject: "journey_events-value",
		PartitionKeyFn: func(tenantID string, evt domain.Event) string {
			return partitionByAggregate(tenantID, evt)
		},
	},
	events.TypeJourneyCompleted: {
		AggregateType: "journey",
		Topic:         "journey_events",
		SchemaSubject: "journey_events-value",
		PartitionKeyFn: func(tenantID string, evt domain.Event) string {
			return partitionByAggregate(tenantID, evt)
		},
	},
	events.TypeRaidContributionRecorded: {
		AggregateType: "raid",
		Topic:         "raid_events",
		SchemaSubject: "raid_events-value",
		PartitionKeyFn: func(tenantID string, evt domain.Event) string {
			return partitionByAggregate(tenantID, evt)
		},
	},
}
