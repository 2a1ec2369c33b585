package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/orbitlearn/backend/internal/models"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Retention windows for maintenance tasks
const (
	webhookRetentionDays  = 90
	checkoutRetentionDays = 7
)

// WebhookEventRepository defines the interface for webhook event data access
type WebhookEventRepository interface {
	// GetByID retrieves a webhook event by its database ID
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.WebhookEvent, error)
	// UpdateStatus updates the processing status of a webhook event
	UpdateStatus(ctx context.Context, id int, status models.WebhookEventStatus, errorMessage string) error
	// DeleteProcessedOlderThan removes processed events past the retention window
	DeleteProcessedOlderThan(ctx context.Context, days int) (int, error)
}

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	// Upsert creates or replaces the single subscription row for a user
	Upsert(ctx context.Context, sub *models.Subscription) error
	// UpdateBySubscriptionID updates status, price and period end by Stripe subscription ID
	UpdateBySubscriptionID(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, priceID string, currentPeriodEnd time.Time) error
	// UpdateStatusBySubscriptionID updates only the status by Stripe subscription ID
	UpdateStatusBySubscriptionID(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus) error
}

// CheckoutSessionRepository defines the interface for checkout session data access
type CheckoutSessionRepository interface {
	// GetBySessionID retrieves a checkout session by its Stripe session ID
	GetBySessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error)
	// DeleteOlderThan removes stale pending checkout sessions
	DeleteOlderThan(ctx context.Context, days int) (int, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// UserTokenRepository defines the interface for refresh token cleanup
type UserTokenRepository interface {
	// DeleteExpired deletes tokens older than the given lifetime
	DeleteExpired(ctx context.Context, lifetime time.Duration) (int, error)
}

// Worker applies stored webhook events to subscription state and runs maintenance tasks
type Worker struct {
	logger           *zap.Logger
	eventRepo        WebhookEventRepository
	subscriptionRepo SubscriptionRepository
	checkoutRepo     CheckoutSessionRepository
	userRepo         UserRepository
	userTokenRepo    UserTokenRepository
	refreshTokenTTL  time.Duration
	smtpHost         string
	smtpPort         int
	smtpUsername     string
	smtpPassword     string
	smtpFrom         string
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	eventRepo WebhookEventRepository,
	subscriptionRepo SubscriptionRepository,
	checkoutRepo CheckoutSessionRepository,
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	refreshTokenTTL time.Duration,
	smtpHost string,
	smtpPort int,
	smtpUsername, smtpPassword, smtpFrom string,
) *Worker {
	return &Worker{
		logger:           logger,
		eventRepo:        eventRepo,
		subscriptionRepo: subscriptionRepo,
		checkoutRepo:     checkoutRepo,
		userRepo:         userRepo,
		userTokenRepo:    userTokenRepo,
		refreshTokenTTL:  refreshTokenTTL,
		smtpHost:         smtpHost,
		smtpPort:         smtpPort,
		smtpUsername:     smtpUsername,
		smtpPassword:     smtpPassword,
		smtpFrom:         smtpFrom,
	}
}

// HandleWebhookEvent applies a stored Stripe event to subscription state
func (w *Worker) HandleWebhookEvent(ctx context.Context, t *asynq.Task) error {
	// Parse event ID from payload
	eventIDStr := string(t.Payload())
	eventID := 0
	if _, err := fmt.Sscanf(eventIDStr, "%d", &eventID); err != nil {
		return fmt.Errorf("failed to parse event ID: %w", err)
	}

	event, err := w.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		// Event was removed before processing; nothing to apply
		if err.Error() == "webhook event not found" {
			return nil
		}
		return err
	}

	// Replayed deliveries enqueue nothing, but a crashed worker can see the
	// same task twice; a processed event must not be applied again
	if event.Status == models.WebhookEventStatusProcessed {
		return nil
	}

	if err := w.applyEvent(ctx, event); err != nil {
		w.eventRepo.UpdateStatus(ctx, eventID, models.WebhookEventStatusFailed, err.Error())
		return err
	}

	if err := w.eventRepo.UpdateStatus(ctx, eventID, models.WebhookEventStatusProcessed, ""); err != nil {
		return err
	}

	w.logger.Info("Webhook event processed",
		zap.Int("event_id", eventID),
		zap.String("stripe_event_id", event.StripeEventID),
		zap.String("type", event.Type),
	)
	return nil
}

// applyEvent dispatches on the Stripe event type
func (w *Worker) applyEvent(ctx context.Context, event *models.WebhookEvent) error {
	switch event.Type {
	case "checkout.session.completed":
		return w.applyCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return w.applySubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return w.applySubscriptionDeleted(ctx, event)
	default:
		// Unhandled event types are accepted and dropped
		w.logger.Debug("ignoring unhandled event type", zap.String("type", event.Type))
		return nil
	}
}

// applyCheckoutCompleted activates the subscription for the user who completed checkout
func (w *Worker) applyCheckoutCompleted(ctx context.Context, event *models.WebhookEvent) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Payload, &cs); err != nil {
		return fmt.Errorf("failed to parse checkout session payload: %w", err)
	}

	userID := 0
	if _, err := fmt.Sscanf(cs.ClientReferenceID, "%d", &userID); err != nil || userID == 0 {
		return fmt.Errorf("checkout session %s has no usable client reference", cs.ID)
	}

	// The pending checkout row carries the price the user picked
	priceID := ""
	if stored, err := w.checkoutRepo.GetBySessionID(ctx, cs.ID); err == nil {
		priceID = stored.PriceID
	}

	customerID := ""
	if cs.Customer != nil {
		customerID = cs.Customer.ID
	}
	subscriptionID := ""
	if cs.Subscription != nil {
		subscriptionID = cs.Subscription.ID
	}

	sub := &models.Subscription{
		UserID:               userID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: subscriptionID,
		PriceID:              priceID,
		Status:               models.SubscriptionStatusActive,
		// The period end arrives with the follow-up customer.subscription.updated event
		CurrentPeriodEnd: time.Now(),
	}
	if err := w.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return err
	}

	// Receipt email is best effort; subscription state is already committed
	if err := w.sendReceiptEmail(ctx, userID); err != nil {
		w.logger.Warn("failed to send receipt email", zap.Int("user_id", userID), zap.Error(err))
	}

	return nil
}

// applySubscriptionUpdated syncs status, price and period end from Stripe
func (w *Worker) applySubscriptionUpdated(ctx context.Context, event *models.WebhookEvent) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Payload, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription payload: %w", err)
	}

	priceID := ""
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}

	// Returning the error lets asynq retry: the update can arrive before the
	// checkout.session.completed event created the row
	return w.subscriptionRepo.UpdateBySubscriptionID(
		ctx,
		sub.ID,
		mapSubscriptionStatus(sub.Status),
		priceID,
		time.Unix(sub.CurrentPeriodEnd, 0),
	)
}

// applySubscriptionDeleted marks the subscription canceled
func (w *Worker) applySubscriptionDeleted(ctx context.Context, event *models.WebhookEvent) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Payload, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription payload: %w", err)
	}

	return w.subscriptionRepo.UpdateStatusBySubscriptionID(ctx, sub.ID, models.SubscriptionStatusCanceled)
}

// mapSubscriptionStatus maps Stripe subscription statuses onto the local enum
func mapSubscriptionStatus(status stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionStatusActive
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusPastDue
	}
}

// HandleTokenCleanup removes expired refresh tokens
func (w *Worker) HandleTokenCleanup(ctx context.Context, t *asynq.Task) error {
	removed, err := w.userTokenRepo.DeleteExpired(ctx, w.refreshTokenTTL)
	if err != nil {
		return err
	}

	w.logger.Info("Expired refresh tokens removed", zap.Int("count", removed))
	return nil
}

// HandleWebhookRetention removes processed webhook events past the retention window
func (w *Worker) HandleWebhookRetention(ctx context.Context, t *asynq.Task) error {
	removed, err := w.eventRepo.DeleteProcessedOlderThan(ctx, webhookRetentionDays)
	if err != nil {
		return err
	}

	w.logger.Info("Processed webhook events removed", zap.Int("count", removed))
	return nil
}

// HandleCheckoutCleanup removes stale pending checkout sessions
func (w *Worker) HandleCheckoutCleanup(ctx context.Context, t *asynq.Task) error {
	removed, err := w.checkoutRepo.DeleteOlderThan(ctx, checkoutRetentionDays)
	if err != nil {
		return err
	}

	w.logger.Info("Stale checkout sessions removed", zap.Int("count", removed))
	return nil
}

// sendReceiptEmail sends a subscription confirmation to the user
func (w *Worker) sendReceiptEmail(ctx context.Context, userID int) error {
	if w.smtpUsername == "" {
		// SMTP not configured
		return nil
	}

	user, err := w.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Hi %s,\n\nYour Orbitlearn subscription is now active. Welcome aboard!\n", user.Username)
	return w.sendEmail(user.Email, "Your Orbitlearn subscription is active", body)
}

// sendEmail sends an email via the configured SMTP server
func (w *Worker) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", w.smtpFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(w.smtpHost, w.smtpPort, w.smtpUsername, w.smtpPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
