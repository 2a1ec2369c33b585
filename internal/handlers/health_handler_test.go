package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthHandler_Health(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	router := chi.NewRouter()
	NewHealthHandler(logger).RegisterRoutes(router)

	before := time.Now().UTC()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
	assert.True(t, !resp.Timestamp.Before(before.Truncate(time.Second)))
	assert.True(t, !resp.Timestamp.After(time.Now().UTC().Add(time.Second)))
}
