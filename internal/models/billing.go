package models

import (
	"encoding/json"
	"time"
)

// SubscriptionStatus represents the state of a user's subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription represents a user's Stripe subscription, one row per user
type Subscription struct {
	ID                   int                `json:"id"`
	UserID               int                `json:"userId"`
	StripeCustomerID     string             `json:"stripeCustomerId"`
	StripeSubscriptionID string             `json:"stripeSubscriptionId"`
	PriceID              string             `json:"priceId"`
	Status               SubscriptionStatus `json:"status"`
	CurrentPeriodEnd     time.Time          `json:"currentPeriodEnd"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// CheckoutSession represents a pending Stripe Checkout session
type CheckoutSession struct {
	ID              int       `json:"id"`
	UserID          int       `json:"userId"`
	StripeSessionID string    `json:"stripeSessionId"`
	PriceID         string    `json:"priceId"`
	URL             string    `json:"url"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateCheckoutRequest represents a request to start a checkout flow
type CreateCheckoutRequest struct {
	PriceID string `json:"priceId"`
}

// WebhookEventStatus represents the processing state of a stored webhook event
type WebhookEventStatus string

const (
	WebhookEventStatusPending   WebhookEventStatus = "pending"
	WebhookEventStatusProcessed WebhookEventStatus = "processed"
	WebhookEventStatusFailed    WebhookEventStatus = "failed"
)

// WebhookEvent represents a verified Stripe event persisted for processing
type WebhookEvent struct {
	ID            int                `json:"id"`
	StripeEventID string             `json:"stripeEventId"`
	Type          string             `json:"type"`
	Payload       json.RawMessage    `json:"payload"`
	Status        WebhookEventStatus `json:"status"`
	ErrorMessage  string             `json:"errorMessage,omitempty"`
	ReceivedAt    time.Time          `json:"receivedAt"`
}
