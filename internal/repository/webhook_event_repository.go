package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

// WebhookEventRepository is the dedupe ledger for webhook deliveries.
type WebhookEventRepository struct {
	db *sqlx.DB
}

// NewWebhookEventRepository constructs the repository.
func NewWebhookEventRepository(db *sqlx.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Seen reports whether the delivery key is already in the ledger. Pure
// lookup; the marker itself is written by Record only after the delivery's
// state change commits, so a failed apply leaves the key replayable.
func (r *WebhookEventRepository) Seen(ctx context.Context, ev *models.WebhookEvent) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM webhook_events
WHERE connector_name = $1 AND external_id = $2 AND event_type = $3 AND occurred_at = $4)`
	var seen bool
	err := r.db.GetContext(ctx, &seen, query, ev.ConnectorName, ev.ExternalID, ev.EventType, ev.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("check webhook event: %w", err)
	}
	return seen, nil
}

// Record inserts the delivery key and reports whether this is the first
// time it was seen. The unique index on (connector_name, external_id,
// event_type, occurred_at) turns a replay into a zero-row insert.
func (r *WebhookEventRepository) Record(ctx context.Context, ev *models.WebhookEvent) (bool, error) {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now().UTC()
	}
	const query = `INSERT INTO webhook_events (id, connector_name, external_id, event_type, occurred_at, received_at)
VALUES (:id, :connector_name, :external_id, :event_type, :occurred_at, :received_at)
ON CONFLICT (connector_name, external_id, event_type, occurred_at) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, ev)
	if err != nil {
		return false, fmt.Errorf("record webhook event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("webhook event rows affected: %w", err)
	}
	return affected == 1, nil
}

// DeleteOlderThan prunes ledger rows past the dedupe horizon.
func (r *WebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM webhook_events WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune webhook events: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune webhook events rows affected: %w", err)
	}
	return affected, nil
}
