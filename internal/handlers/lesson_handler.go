package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orbitlearn/backend/internal/middleware"
	"github.com/orbitlearn/backend/internal/models"
	"go.uber.org/zap"
)

// LessonService is the interface that wraps methods for lesson read operations
type LessonService interface {
	// GetLessons retrieves the ordered lesson list with completion flags for a user
	GetLessons(ctx context.Context, userID int) ([]models.LessonListItem, error)
	// GetLesson retrieves a single lesson with completion flag for a user
	GetLesson(ctx context.Context, slug string, userID int) (*models.LessonListItem, error)
}

// LessonHandler handles lesson-related HTTP requests
type LessonHandler struct {
	BaseHandler
	lessonService LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessonService LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		lessonService: lessonService,
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/lessons", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetLessons)
		r.Get("/{slug}", h.GetLesson)
	})
}

// GetLessons handles GET /lessons
// @Summary Get lesson list
// @Description Get the ordered lesson list with per-user completion flags.
// @Tags lessons
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.LessonListItem "List of lessons"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons [get]
func (h *LessonHandler) GetLessons(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	lessons, err := h.lessonService.GetLessons(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to get lessons", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// GetLesson handles GET /lessons/{slug}
// @Summary Get a lesson
// @Description Get a single lesson by slug with the completion flag for the current user.
// @Tags lessons
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Lesson slug"
// @Success 200 {object} models.LessonListItem "Lesson"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{slug} [get]
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	userID, _ := middleware.GetUserID(r.Context())

	lesson, err := h.lessonService.GetLesson(r.Context(), slug, userID)
	if err != nil {
		h.Logger.Error("failed to get lesson", zap.Error(err), zap.String("slug", slug))
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "lesson not found")
			return
		}
		h.RespondError(w, http.StatusInternalServerError, "failed to get lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}
