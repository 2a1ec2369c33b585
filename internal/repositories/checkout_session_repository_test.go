package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/orbitlearn/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckoutSessionTestRepository(t *testing.T) (*checkoutSessionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCheckoutSessionRepository(db)
	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestCheckoutSessionRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		session       *models.CheckoutSession
		setupMock     func(mock sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success",
			session: &models.CheckoutSession{
				UserID:          1,
				StripeSessionID: "cs_test_1",
				PriceID:         "price_123",
				URL:             "https://checkout.stripe.com/pay/cs_test_1",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO checkout_sessions \(user_id, stripe_session_id, price_id, url\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id`).
					WithArgs(1, "cs_test_1", "price_123", "https://checkout.stripe.com/pay/cs_test_1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
			},
			expectedError: false,
		},
		{
			name: "database error",
			session: &models.CheckoutSession{
				UserID:          1,
				StripeSessionID: "cs_test_1",
				PriceID:         "price_123",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO checkout_sessions`).
					WillReturnError(assert.AnError)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCheckoutSessionTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.session)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 5, tt.session.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckoutSessionRepository_GetBySessionID(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(mock sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "user_id", "stripe_session_id", "price_id", "url", "created_at"}).
					AddRow(5, 1, "cs_test_1", "price_123", "https://checkout.stripe.com/pay/cs_test_1", createdAt)
				mock.ExpectQuery(`SELECT id, user_id, stripe_session_id, price_id, url, created_at FROM checkout_sessions WHERE stripe_session_id = \$1 LIMIT 1`).
					WithArgs("cs_test_1").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, user_id, stripe_session_id, price_id, url, created_at FROM checkout_sessions`).
					WithArgs("cs_test_1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "stripe_session_id", "price_id", "url", "created_at"}))
			},
			expectedError: "checkout session not found",
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, user_id, stripe_session_id, price_id, url, created_at FROM checkout_sessions`).
					WithArgs("cs_test_1").
					WillReturnError(assert.AnError)
			},
			expectedError: "failed to get checkout session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCheckoutSessionTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			session, err := repo.GetBySessionID(context.Background(), "cs_test_1")

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Nil(t, session)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, session.UserID)
				assert.Equal(t, "price_123", session.PriceID)
				assert.Equal(t, createdAt, session.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckoutSessionRepository_DeleteOlderThan(t *testing.T) {
	repo, mock, cleanup := setupCheckoutSessionTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM checkout_sessions WHERE created_at < NOW\(\) - \$1::interval`).
		WithArgs("7 days").
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteOlderThan(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
