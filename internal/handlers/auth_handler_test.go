package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/orbitlearn/backend/internal/auth"
	"github.com/orbitlearn/backend/internal/middleware"
	"github.com/orbitlearn/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	accessToken  string
	refreshToken string
	user         *models.User
	err          error
	loggedOut    []string
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.accessToken, m.refreshToken, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.accessToken, m.refreshToken, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.accessToken, m.refreshToken, nil
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	if m.err != nil {
		return m.err
	}
	m.loggedOut = append(m.loggedOut, refreshToken)
	return nil
}

func (m *mockAuthService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func setupAuthTestRouter(t *testing.T, svc *mockAuthService) (*chi.Mux, *auth.TokenGenerator) {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	tokenGen := auth.NewTokenGenerator("test-secret", time.Hour, 168*time.Hour)

	router := chi.NewRouter()
	NewAuthHandler(svc, logger).RegisterRoutes(router, middleware.AuthMiddleware(tokenGen))

	return router, tokenGen
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *mockAuthService
		expectedStatus int
		expectCookies  bool
	}{
		{
			name:           "success",
			body:           `{"email":"test@example.com","username":"testuser","password":"Password123!"}`,
			service:        &mockAuthService{accessToken: "access", refreshToken: "refresh"},
			expectedStatus: http.StatusCreated,
			expectCookies:  true,
		},
		{
			name:           "invalid body",
			body:           `not-json`,
			service:        &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing fields",
			body:           `{"email":"test@example.com"}`,
			service:        &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "email already exists",
			body:           `{"email":"test@example.com","username":"testuser","password":"Password123!"}`,
			service:        &mockAuthService{err: errors.New("email already exists")},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "weak password",
			body:           `{"email":"test@example.com","username":"testuser","password":"weak"}`,
			service:        &mockAuthService{err: errors.New("password must be at least 8 characters long")},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "service failure",
			body:           `{"email":"test@example.com","username":"testuser","password":"Password123!"}`,
			service:        &mockAuthService{err: errors.New("database error")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupAuthTestRouter(t, tt.service)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			cookies := rec.Result().Cookies()
			if tt.expectCookies {
				accessCookie := cookieByName(cookies, "access_token")
				require.NotNil(t, accessCookie)
				assert.Equal(t, "access", accessCookie.Value)
				assert.True(t, accessCookie.HttpOnly)

				refreshCookie := cookieByName(cookies, "refresh_token")
				require.NotNil(t, refreshCookie)
				assert.Equal(t, "refresh", refreshCookie.Value)
				assert.True(t, refreshCookie.HttpOnly)
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets cookies", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{accessToken: "access", refreshToken: "refresh"})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"login":"testuser","password":"Password123!"}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, cookieByName(rec.Result().Cookies(), "access_token"))
		require.NotNil(t, cookieByName(rec.Result().Cookies(), "refresh_token"))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{err: errors.New("invalid credentials")})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"login":"testuser","password":"wrong"}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("invalid body", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`not-json`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("token from body", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{accessToken: "new-access", refreshToken: "new-refresh"})

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh"}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		refreshCookie := cookieByName(rec.Result().Cookies(), "refresh_token")
		require.NotNil(t, refreshCookie)
		assert.Equal(t, "new-refresh", refreshCookie.Value)
	})

	t.Run("token from cookie", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{accessToken: "new-access", refreshToken: "new-refresh"})

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{}`))
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old-refresh"})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{err: errors.New("invalid or expired refresh token")})

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"stale"}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("clears cookies and invalidates token", func(t *testing.T) {
		svc := &mockAuthService{}
		router, _ := setupAuthTestRouter(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh"})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"refresh"}, svc.loggedOut)

		accessCookie := cookieByName(rec.Result().Cookies(), "access_token")
		require.NotNil(t, accessCookie)
		assert.Equal(t, -1, accessCookie.MaxAge)
	})

	t.Run("service failure", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{err: errors.New("database error")})

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	user := &models.User{ID: 1, Username: "testuser", Email: "test@example.com", Role: models.RoleUser}

	t.Run("success with bearer token", func(t *testing.T) {
		router, tokenGen := setupAuthTestRouter(t, &mockAuthService{user: user})
		accessToken, _, err := tokenGen.GenerateTokens(1, int(models.RoleUser))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.Username, resp.Username)
		assert.Empty(t, resp.PasswordHash)
	})

	t.Run("success with cookie", func(t *testing.T) {
		router, tokenGen := setupAuthTestRouter(t, &mockAuthService{user: user})
		accessToken, _, err := tokenGen.GenerateTokens(1, int(models.RoleUser))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: accessToken})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{user: user})

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		router, _ := setupAuthTestRouter(t, &mockAuthService{user: user})

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
