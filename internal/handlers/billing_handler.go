package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orbitlearn/backend/internal/middleware"
	"github.com/orbitlearn/backend/internal/models"
	"github.com/orbitlearn/backend/internal/services"
	"go.uber.org/zap"
)

// Stripe webhook payloads are small; cap reads defensively below the global limit
const maxWebhookBodyBytes = 1 << 20 // 1MB

// BillingService is the interface that wraps methods for billing business logic
type BillingService interface {
	// CreateCheckout starts a checkout flow for a user and persists the pending session
	CreateCheckout(ctx context.Context, userID int, req *models.CreateCheckoutRequest) (*models.CheckoutSession, error)
	// HandleWebhook verifies a webhook payload, stores the event and enqueues it for processing
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	// GetSubscription retrieves the subscription for a user
	GetSubscription(ctx context.Context, userID int) (*models.Subscription, error)
}

// BillingHandler handles billing-related HTTP requests
type BillingHandler struct {
	BaseHandler
	billingService BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		billingService: billingService,
	}
}

// RegisterRoutes registers all billing handler routes.
// The webhook route stays outside auth middleware: Stripe authenticates with a signature, not a session.
func (h *BillingHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/stripe", func(r chi.Router) {
		r.Post("/webhook", h.Webhook)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/create-checkout-session", h.CreateCheckoutSession)
			r.Get("/subscription", h.GetSubscription)
		})
	})
}

// CreateCheckoutSession handles POST /stripe/create-checkout-session
// @Summary Start a checkout flow
// @Description Create a Stripe Checkout session for a price and return the redirect URL.
// @Tags billing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateCheckoutRequest true "Checkout request"
// @Success 201 {object} models.CheckoutSession "Checkout session"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /stripe/create-checkout-session [post]
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	session, err := h.billingService.CreateCheckout(r.Context(), userID, &req)
	if err != nil {
		h.Logger.Error("failed to create checkout session", zap.Error(err), zap.Int("userId", userID))
		if strings.Contains(err.Error(), "required") {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.RespondError(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	h.RespondJSON(w, http.StatusCreated, session)
}

// Webhook handles POST /stripe/webhook
// @Summary Receive a Stripe webhook
// @Description Verify the Stripe-Signature header and enqueue the event for processing. Replayed events are acknowledged without re-processing.
// @Tags billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature header"
// @Success 200 {object} map[string]string "Event accepted"
// @Failure 400 {object} map[string]string "Invalid signature or payload"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /stripe/webhook [post]
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.Logger.Error("failed to read webhook body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")

	if err := h.billingService.HandleWebhook(r.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) || errors.Is(err, services.ErrWebhookNotConfigured) {
			h.Logger.Warn("rejected webhook", zap.Error(err))
			h.RespondError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		h.Logger.Error("failed to handle webhook", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to handle webhook")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

// GetSubscription handles GET /stripe/subscription
// @Summary Get current subscription
// @Description Return the authenticated user's subscription, if any.
// @Tags billing
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Subscription "Subscription"
// @Failure 404 {object} map[string]string "No subscription"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /stripe/subscription [get]
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	sub, err := h.billingService.GetSubscription(r.Context(), userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "no subscription")
			return
		}
		h.Logger.Error("failed to get subscription", zap.Error(err), zap.Int("userId", userID))
		h.RespondError(w, http.StatusInternalServerError, "failed to get subscription")
		return
	}

	h.RespondJSON(w, http.StatusOK, sub)
}
