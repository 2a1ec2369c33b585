package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbitlearn/backend/internal/models"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// ErrInvalidSignature is returned when a webhook payload fails signature verification
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrWebhookNotConfigured is returned when no webhook secret is configured
var ErrWebhookNotConfigured = errors.New("webhook secret is not configured")

// CheckoutProvider creates hosted checkout sessions with the payment provider
type CheckoutProvider interface {
	// CreateSession creates a checkout session and returns the provider session ID and redirect URL
	CreateSession(ctx context.Context, userID int, priceID string) (string, string, error)
}

// CheckoutSessionRepository defines methods for checkout session data access
type CheckoutSessionRepository interface {
	// Create inserts a pending checkout session row
	Create(ctx context.Context, session *models.CheckoutSession) error
	// GetBySessionID retrieves a checkout session by its provider session ID
	GetBySessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error)
}

// WebhookEventRepository defines methods for webhook event data access
type WebhookEventRepository interface {
	// Create persists a verified event; the bool result reports whether the event is new
	Create(ctx context.Context, event *models.WebhookEvent) (bool, error)
}

// SubscriptionRepository defines methods for subscription data access
type SubscriptionRepository interface {
	// GetByUserID retrieves a user's subscription
	GetByUserID(ctx context.Context, userID int) (*models.Subscription, error)
}

// WebhookEnqueuer hands stored webhook events to the background worker
type WebhookEnqueuer interface {
	// EnqueueWebhookEvent enqueues processing of a stored webhook event by its database ID
	EnqueueWebhookEvent(ctx context.Context, eventID int) error
}

// billingService implements checkout and webhook business logic
type billingService struct {
	provider      CheckoutProvider
	checkoutRepo  CheckoutSessionRepository
	eventRepo     WebhookEventRepository
	subRepo       SubscriptionRepository
	enqueuer      WebhookEnqueuer
	webhookSecret string
	logger        *zap.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(
	provider CheckoutProvider,
	checkoutRepo CheckoutSessionRepository,
	eventRepo WebhookEventRepository,
	subRepo SubscriptionRepository,
	enqueuer WebhookEnqueuer,
	webhookSecret string,
	logger *zap.Logger,
) *billingService {
	return &billingService{
		provider:      provider,
		checkoutRepo:  checkoutRepo,
		eventRepo:     eventRepo,
		subRepo:       subRepo,
		enqueuer:      enqueuer,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateCheckout starts a checkout flow for a user and persists the pending session
func (s *billingService) CreateCheckout(ctx context.Context, userID int, req *models.CreateCheckoutRequest) (*models.CheckoutSession, error) {
	if req.PriceID == "" {
		return nil, fmt.Errorf("priceId is required")
	}

	sessionID, url, err := s.provider.CreateSession(ctx, userID, req.PriceID)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	session := &models.CheckoutSession{
		UserID:          userID,
		StripeSessionID: sessionID,
		PriceID:         req.PriceID,
		URL:             url,
	}
	if err := s.checkoutRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// HandleWebhook verifies a webhook payload, stores the event and enqueues it for
// the worker. A replayed event ID is acknowledged without being enqueued again.
// Nothing is stored when signature verification fails.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if s.webhookSecret == "" {
		return ErrWebhookNotConfigured
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	stored := &models.WebhookEvent{
		StripeEventID: event.ID,
		Type:          string(event.Type),
		Payload:       event.Data.Raw,
	}

	inserted, err := s.eventRepo.Create(ctx, stored)
	if err != nil {
		return fmt.Errorf("failed to store webhook event: %w", err)
	}

	if !inserted {
		// Stripe retried a delivery we already have
		s.logger.Info("duplicate webhook event ignored", zap.String("stripe_event_id", event.ID))
		return nil
	}

	if err := s.enqueuer.EnqueueWebhookEvent(ctx, stored.ID); err != nil {
		return fmt.Errorf("failed to enqueue webhook event: %w", err)
	}

	return nil
}

// GetSubscription retrieves the subscription for a user
func (s *billingService) GetSubscription(ctx context.Context, userID int) (*models.Subscription, error) {
	return s.subRepo.GetByUserID(ctx, userID)
}
