package consumer

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/voyage/internal/events"
)

// RaidProgressHandler maintains the raid_progress_log projection used for
// progress-over-time charts. Events other than raid contributions pass through.
type RaidProgressHandler struct {
	pool *pgxpool.Pool
	next Handler
}

// NewRaidProgressHandler wraps next with raid projection writes.
func NewRaidProgressHandler(pool *pgxpool.Pool, next Handler) *RaidProgressHandler {
	return &RaidProgressHandler{pool: pool, next: next}
}

// Handle records raid progress snapshots before delegating to the wrapped handler.
func (h *RaidProgressHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType == events.TypeRaidContributionRecorded {
		var payload events.RaidContributionRecorded
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		conn, err := h.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		_, err = conn.Exec(ctx,
			`INSERT INTO raid_progress_log (raid_id, tenant_id, user_id, progress_delta, raid_progress, occurred_at)
             VALUES ($1,$2,$3,$4,$5,$6)`,
			payload.RaidID,
			payload.TenantID,
			payload.UserID,
			payload.Progress,
			payload.RaidProgress,
			payload.OccurredAt,
		)
		conn.Release()
		if err != nil {
			return err
		}
	}

	if h.next == nil {
		return nil
	}
	return h.next.Handle(ctx, msg)
}
