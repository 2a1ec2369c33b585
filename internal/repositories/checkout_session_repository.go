package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/orbitlearn/backend/internal/models"
)

type checkoutSessionRepository struct {
	db *sql.DB
}

// NewCheckoutSessionRepository creates a new checkout session repository
func NewCheckoutSessionRepository(db *sql.DB) *checkoutSessionRepository {
	return &checkoutSessionRepository{
		db: db,
	}
}

// Create inserts a pending checkout session row
func (r *checkoutSessionRepository) Create(ctx context.Context, session *models.CheckoutSession) error {
	query := `
		INSERT INTO checkout_sessions (user_id, stripe_session_id, price_id, url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		session.UserID,
		session.StripeSessionID,
		session.PriceID,
		session.URL,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create checkout session: %w", err)
	}

	return nil
}

// GetBySessionID retrieves a checkout session by its Stripe session ID
func (r *checkoutSessionRepository) GetBySessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error) {
	query := `
		SELECT id, user_id, stripe_session_id, price_id, url, created_at
		FROM checkout_sessions
		WHERE stripe_session_id = $1
		LIMIT 1
	`

	session := &models.CheckoutSession{}
	err := r.db.QueryRowContext(ctx, query, stripeSessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.StripeSessionID,
		&session.PriceID,
		&session.URL,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checkout session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	return session, nil
}

// DeleteOlderThan removes stale pending checkout sessions and returns the number removed
func (r *checkoutSessionRepository) DeleteOlderThan(ctx context.Context, days int) (int, error) {
	query := `DELETE FROM checkout_sessions WHERE created_at < NOW() - $1::interval`

	result, err := r.db.ExecContext(ctx, query, fmt.Sprintf("%d days", days))
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale checkout sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
