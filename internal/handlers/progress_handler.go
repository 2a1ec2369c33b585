package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orbitlearn/backend/internal/middleware"
	"github.com/orbitlearn/backend/internal/models"
	"github.com/orbitlearn/backend/internal/services"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for user progress business logic
type ProgressService interface {
	// ListProgress retrieves the user's progress records with a completion count
	ListProgress(ctx context.Context, userID int) (*services.ProgressSummary, error)
	// RecordProgress marks a lesson as completed for a user; re-completing is a no-op
	RecordProgress(ctx context.Context, userID int, req *models.RecordProgressRequest) error
}

// ProgressHandler handles progress-related HTTP requests
type ProgressHandler struct {
	BaseHandler
	progressService ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		progressService: progressService,
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListProgress)
		r.Post("/", h.RecordProgress)
	})
}

// ListProgress handles GET /progress
// @Summary Get user progress
// @Description Get the authenticated user's lesson completion records.
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} services.ProgressSummary "Progress summary"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /progress [get]
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	summary, err := h.progressService.ListProgress(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list progress", zap.Error(err), zap.Int("userId", userID))
		h.RespondError(w, http.StatusInternalServerError, "failed to list progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, summary)
}

// RecordProgress handles POST /progress
// @Summary Record lesson completion
// @Description Mark a lesson as completed for the authenticated user. Re-completing a lesson is a no-op.
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.RecordProgressRequest true "Lesson to mark completed"
// @Success 200 {object} map[string]string "Progress recorded"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Router /progress [post]
func (h *ProgressHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	var req models.RecordProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	if err := h.progressService.RecordProgress(r.Context(), userID, &req); err != nil {
		h.Logger.Error("failed to record progress", zap.Error(err), zap.Int("userId", userID))
		switch {
		case strings.Contains(err.Error(), "not found"):
			h.RespondError(w, http.StatusNotFound, "lesson not found")
		case strings.Contains(err.Error(), "required"):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.RespondError(w, http.StatusInternalServerError, "failed to record progress")
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "progress recorded"})
}
