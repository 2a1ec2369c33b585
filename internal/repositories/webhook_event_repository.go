package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/orbitlearn/backend/internal/models"
)

type webhookEventRepository struct {
	db *sql.DB
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *sql.DB) *webhookEventRepository {
	return &webhookEventRepository{
		db: db,
	}
}

// Create persists a verified event. The bool result reports whether the event is new;
// a replayed Stripe event ID inserts nothing.
func (r *webhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (stripe_event_id, event_type, payload, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (stripe_event_id) DO NOTHING
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		event.StripeEventID,
		event.Type,
		[]byte(event.Payload),
		models.WebhookEventStatusPending,
	).Scan(&event.ID)

	if err == sql.ErrNoRows {
		// Duplicate delivery
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create webhook event: %w", err)
	}

	event.Status = models.WebhookEventStatusPending
	return true, nil
}

// GetByID retrieves a webhook event by its ID
func (r *webhookEventRepository) GetByID(ctx context.Context, id int) (*models.WebhookEvent, error) {
	query := `
		SELECT id, stripe_event_id, event_type, payload, status, COALESCE(error_message, ''), received_at
		FROM webhook_events
		WHERE id = $1
		LIMIT 1
	`

	event := &models.WebhookEvent{}
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.StripeEventID,
		&event.Type,
		&payload,
		&event.Status,
		&event.ErrorMessage,
		&event.ReceivedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("webhook event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	event.Payload = payload
	return event, nil
}

// UpdateStatus updates the processing status of a webhook event
func (r *webhookEventRepository) UpdateStatus(ctx context.Context, id int, status models.WebhookEventStatus, errorMessage string) error {
	query := `
		UPDATE webhook_events
		SET status = $1, error_message = NULLIF($2, ''), processed_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update webhook event status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("webhook event not found")
	}

	return nil
}

// DeleteProcessedOlderThan removes processed events past the retention window
func (r *webhookEventRepository) DeleteProcessedOlderThan(ctx context.Context, days int) (int, error) {
	query := `
		DELETE FROM webhook_events
		WHERE status = $1 AND received_at < NOW() - $2::interval
	`

	result, err := r.db.ExecContext(ctx, query, models.WebhookEventStatusProcessed, fmt.Sprintf("%d days", days))
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed webhook events: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
