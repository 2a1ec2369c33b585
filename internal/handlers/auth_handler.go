package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orbitlearn/backend/internal/middleware"
	"github.com/orbitlearn/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register performs user credentials validation and creation and returns access and refresh tokens.
	//
	// "req" parameter contains email, username and password.
	//
	// If user passed invalid credentials, or such user already exists, or some other error occurs, the error will be returned together with empty strings for access and refresh tokens.
	Register(ctx context.Context, req *models.RegisterRequest) (string, string, error)
	// Method Login performs user credentials validation and returns access and refresh tokens.
	//
	// "req" parameter contains login and password.
	//
	// If user passed invalid credentials, or such user does not exist, or some other error occurs, the error will be returned together with empty strings for access and refresh tokens.
	Login(ctx context.Context, req *models.LoginRequest) (string, string, error)
	// Method Refresh performs refresh token validation and returns a new access token and refresh token.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	// Method Logout invalidates a persisted refresh token.
	Logout(ctx context.Context, refreshToken string) error
	// Method GetProfile returns the user for the given ID.
	GetProfile(ctx context.Context, userID int) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService AuthService,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
		})
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new user with email, username and password. Returns access and refresh tokens as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]string "User registered successfully"
// @Failure 400 {object} map[string]string "Invalid request body or user already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Username == "" || req.Password == "" {
		h.RespondError(w, http.StatusBadRequest, "email, username, and password are required")
		return
	}

	accessToken, refreshToken, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to register user", zap.Error(err))
		errStatus := http.StatusInternalServerError
		// Return appropriate status code based on error
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "must be") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)

	h.RespondJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate user with login (email or username) and password. Returns access and refresh tokens as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]string "Login successful"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to login user", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "login successful"})
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh
// @Summary Refresh access token
// @Description Refresh access and refresh tokens using a valid refresh token. Token can be provided in request body or as a cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]string "Tokens refreshed successfully"
// @Failure 400 {object} map[string]string "Refresh token required"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	// Get refresh token from request body or cookie
	var refreshToken string
	var req RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		refreshToken = req.RefreshToken
	} else {
		cookie, err := r.Cookie("refresh_token")
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "refresh token required")
			return
		}
		refreshToken = cookie.Value
	}

	accessToken, newRefreshToken, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.Logger.Error("failed to refresh tokens", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, newRefreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "tokens refreshed successfully"})
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Invalidate the refresh token and clear auth cookies.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
		h.Logger.Error("failed to logout user", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	h.clearTokenCookies(w)

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// Me handles GET /auth/me
// @Summary Get current user
// @Description Return the authenticated user's profile.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User "Current user"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to get user profile", zap.Error(err), zap.Int("userId", userID))
		h.RespondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	// Access token cookie (1 hour)
	accessCookie := &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   3600, // 1 hour
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, accessCookie)

	// Refresh token cookie (7 days)
	refreshCookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   604800, // 7 days
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, refreshCookie)
}

// clearTokenCookies expires both auth cookies
func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
