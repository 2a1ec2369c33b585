package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orbitlearn/backend/internal/middleware"
	"github.com/orbitlearn/backend/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user read/update business logic
type UserService interface {
	// GetUser returns a user by ID, enforcing that regular users can only read their own row
	GetUser(ctx context.Context, requesterID int, requesterRole models.Role, targetID int) (*models.User, error)
	// UpdateUser applies a partial update, enforcing that regular users can only update their own row
	UpdateUser(ctx context.Context, requesterID int, requesterRole models.Role, targetID int, req *models.UpdateUserRequest) (*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/{id}", h.GetUser)
		r.Patch("/{id}", h.UpdateUser)
	})
}

// GetUser handles GET /users/{id}
// @Summary Get a user
// @Description Get a user by ID. Regular users can only read their own row.
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User "User"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 403 {object} map[string]string "Access denied"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	requesterID, _ := middleware.GetUserID(r.Context())
	requesterRole, _ := middleware.GetRole(r.Context())

	user, err := h.userService.GetUser(r.Context(), requesterID, models.Role(requesterRole), targetID)
	if err != nil {
		h.Logger.Error("failed to get user", zap.Error(err), zap.Int("userId", targetID))
		h.RespondError(w, userErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// UpdateUser handles PATCH /users/{id}
// @Summary Update a user
// @Description Partially update a user's username or email. Regular users can only update their own row.
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User "Updated user"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Access denied"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	requesterID, _ := middleware.GetUserID(r.Context())
	requesterRole, _ := middleware.GetRole(r.Context())

	user, err := h.userService.UpdateUser(r.Context(), requesterID, models.Role(requesterRole), targetID, &req)
	if err != nil {
		h.Logger.Error("failed to update user", zap.Error(err), zap.Int("userId", targetID))
		h.RespondError(w, userErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// userErrorStatus maps user service errors to HTTP status codes
func userErrorStatus(err error) int {
	switch {
	case strings.Contains(err.Error(), "access denied"):
		return http.StatusForbidden
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	case strings.Contains(err.Error(), "already exists"),
		strings.Contains(err.Error(), "invalid"),
		strings.Contains(err.Error(), "must be"),
		strings.Contains(err.Error(), "no fields"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
