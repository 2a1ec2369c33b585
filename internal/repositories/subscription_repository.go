package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/orbitlearn/backend/internal/models"
)

type subscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) *subscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

// GetByUserID retrieves a user's subscription
func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID int) (*models.Subscription, error) {
	query := `
		SELECT id, user_id, stripe_customer_id, stripe_subscription_id, price_id, status, current_period_end, updated_at
		FROM subscriptions
		WHERE user_id = $1
		LIMIT 1
	`

	sub := &models.Subscription{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.StripeCustomerID,
		&sub.StripeSubscriptionID,
		&sub.PriceID,
		&sub.Status,
		&sub.CurrentPeriodEnd,
		&sub.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subscription not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// Upsert creates or replaces the single subscription row for a user
func (r *subscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id, price_id, status, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			price_id = EXCLUDED.price_id,
			status = EXCLUDED.status,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		sub.UserID,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
		sub.PriceID,
		sub.Status,
		sub.CurrentPeriodEnd,
	).Scan(&sub.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// UpdateBySubscriptionID updates status, price and period end by Stripe subscription ID
func (r *subscriptionRepository) UpdateBySubscriptionID(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, priceID string, currentPeriodEnd time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = $1, price_id = $2, current_period_end = $3, updated_at = NOW()
		WHERE stripe_subscription_id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, priceID, currentPeriodEnd, stripeSubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found")
	}

	return nil
}

// UpdateStatusBySubscriptionID updates the status of a subscription by its Stripe subscription ID
func (r *subscriptionRepository) UpdateStatusBySubscriptionID(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus) error {
	query := `
		UPDATE subscriptions
		SET status = $1, updated_at = NOW()
		WHERE stripe_subscription_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, stripeSubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found")
	}

	return nil
}
