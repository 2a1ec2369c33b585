// Package payments wraps the Stripe SDK behind interfaces the services consume
package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeClient creates Stripe Checkout sessions
type StripeClient struct {
	successURL string
	cancelURL  string
}

// NewStripeClient configures the Stripe SDK and returns a client
func NewStripeClient(secretKey, successURL, cancelURL string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateSession creates a subscription Checkout session for a user and price.
// The user ID travels as the session's client reference so webhook events can
// be tied back to the account.
func (c *StripeClient) CreateSession(ctx context.Context, userID int, priceID string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(strconv.Itoa(userID)),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return s.ID, s.URL, nil
}
