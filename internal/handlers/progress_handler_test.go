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
	"github.com/orbitlearn/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockProgressService is a mock implementation of ProgressService
type mockProgressService struct {
	summary    *services.ProgressSummary
	listErr    error
	recordErr  error
	recordedBy int
}

func (m *mockProgressService) ListProgress(ctx context.Context, userID int) (*services.ProgressSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.summary, nil
}

func (m *mockProgressService) RecordProgress(ctx context.Context, userID int, req *models.RecordProgressRequest) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recordedBy = userID
	return nil
}

func setupProgressTestRouter(t *testing.T, svc *mockProgressService) (*chi.Mux, string) {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	tokenGen := auth.NewTokenGenerator("test-secret", time.Hour, 168*time.Hour)
	accessToken, _, err := tokenGen.GenerateTokens(7, int(models.RoleUser))
	require.NoError(t, err)

	router := chi.NewRouter()
	NewProgressHandler(svc, logger).RegisterRoutes(router, middleware.AuthMiddleware(tokenGen))

	return router, accessToken
}

func TestProgressHandler_ListProgress(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		summary := &services.ProgressSummary{
			Completed: 1,
			Items: []models.ProgressListItem{
				{LessonSlug: "getting-started", LessonTitle: "Getting Started", CompletedAt: time.Now().UTC()},
			},
		}
		router, token := setupProgressTestRouter(t, &mockProgressService{summary: summary})

		req := httptest.NewRequest(http.MethodGet, "/progress/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp services.ProgressSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Completed)
		assert.Len(t, resp.Items, 1)
	})

	t.Run("missing authentication", func(t *testing.T) {
		router, _ := setupProgressTestRouter(t, &mockProgressService{})

		req := httptest.NewRequest(http.MethodGet, "/progress/", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		router, token := setupProgressTestRouter(t, &mockProgressService{listErr: errors.New("database error")})

		req := httptest.NewRequest(http.MethodGet, "/progress/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestProgressHandler_RecordProgress(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *mockProgressService
		expectedStatus int
	}{
		{
			name:           "success",
			body:           `{"lessonSlug":"getting-started"}`,
			service:        &mockProgressService{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid body",
			body:           `not-json`,
			service:        &mockProgressService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing slug",
			body:           `{}`,
			service:        &mockProgressService{recordErr: errors.New("lessonSlug is required")},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "lesson not found",
			body:           `{"lessonSlug":"no-such-lesson"}`,
			service:        &mockProgressService{recordErr: errors.New("failed to get lesson: lesson not found")},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "service failure",
			body:           `{"lessonSlug":"getting-started"}`,
			service:        &mockProgressService{recordErr: errors.New("database error")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, token := setupProgressTestRouter(t, tt.service)

			req := httptest.NewRequest(http.MethodPost, "/progress/", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, 7, tt.service.recordedBy)
			}
		})
	}
}
