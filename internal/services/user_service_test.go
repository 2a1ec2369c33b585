package services

import (
	"context"
	"errors"
	"testing"

	"github.com/orbitlearn/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserUpdateRepository is a mock implementation of UserUpdateRepository
type mockUserUpdateRepository struct {
	user                   *models.User
	err                    error
	updateErr              error
	existsByEmailResult    bool
	existsByUsernameResult bool
	updated                []*models.User
}

func (m *mockUserUpdateRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserUpdateRepository) Update(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, user)
	return nil
}

func (m *mockUserUpdateRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.existsByEmailResult, nil
}

func (m *mockUserUpdateRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.existsByUsernameResult, nil
}

func TestUserService_GetUser(t *testing.T) {
	user := &models.User{ID: 2, Username: "testuser", Email: "test@example.com", Role: models.RoleUser}

	tests := []struct {
		name          string
		requesterID   int
		requesterRole models.Role
		targetID      int
		userRepo      *mockUserUpdateRepository
		expectedError bool
		errorContains string
	}{
		{
			name:          "user reads own row",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: false,
		},
		{
			name:          "admin reads another user",
			requesterID:   1,
			requesterRole: models.RoleAdmin,
			targetID:      2,
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: false,
		},
		{
			name:          "user cannot read another user",
			requesterID:   3,
			requesterRole: models.RoleUser,
			targetID:      2,
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: true,
			errorContains: "access denied",
		},
		{
			name:          "user not found",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			userRepo:      &mockUserUpdateRepository{err: errors.New("user not found")},
			expectedError: true,
			errorContains: "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo)

			result, err := svc.GetUser(context.Background(), tt.requesterID, tt.requesterRole, tt.targetID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user, result)
			}
		})
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	user := &models.User{ID: 2, Username: "newname", Email: "new@example.com", Role: models.RoleUser}

	tests := []struct {
		name          string
		requesterID   int
		requesterRole models.Role
		targetID      int
		req           *models.UpdateUserRequest
		userRepo      *mockUserUpdateRepository
		expectedError bool
		errorContains string
	}{
		{
			name:          "update both fields",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Username: "newname", Email: "New@Example.COM"},
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: false,
		},
		{
			name:          "update username only",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Username: "newname"},
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: false,
		},
		{
			name:          "admin updates another user",
			requesterID:   1,
			requesterRole: models.RoleAdmin,
			targetID:      2,
			req:           &models.UpdateUserRequest{Username: "newname"},
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: false,
		},
		{
			name:          "user cannot update another user",
			requesterID:   3,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Username: "newname"},
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: true,
			errorContains: "access denied",
		},
		{
			name:          "invalid email format",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Email: "invalid-email"},
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: true,
			errorContains: "invalid email format",
		},
		{
			name:          "email already exists",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Email: "taken@example.com"},
			userRepo:      &mockUserUpdateRepository{user: user, existsByEmailResult: true},
			expectedError: true,
			errorContains: "email already exists",
		},
		{
			name:          "username too short",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Username: "ab"},
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: true,
			errorContains: "username must be at least 3 characters",
		},
		{
			name:          "username already exists",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Username: "taken"},
			userRepo:      &mockUserUpdateRepository{user: user, existsByUsernameResult: true},
			expectedError: true,
			errorContains: "username already exists",
		},
		{
			name:          "no fields to update",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{},
			userRepo:      &mockUserUpdateRepository{user: user},
			expectedError: true,
			errorContains: "no fields to update",
		},
		{
			name:          "update error",
			requesterID:   2,
			requesterRole: models.RoleUser,
			targetID:      2,
			req:           &models.UpdateUserRequest{Username: "newname"},
			userRepo:      &mockUserUpdateRepository{user: user, updateErr: errors.New("database error")},
			expectedError: true,
			errorContains: "database error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo)

			result, err := svc.UpdateUser(context.Background(), tt.requesterID, tt.requesterRole, tt.targetID, tt.req)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Empty(t, tt.userRepo.updated)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user, result)
				require.Len(t, tt.userRepo.updated, 1)
			}
		})
	}
}

func TestUserService_UpdateUser_NormalizesEmail(t *testing.T) {
	userRepo := &mockUserUpdateRepository{user: &models.User{ID: 2}}
	svc := NewUserService(userRepo)

	_, err := svc.UpdateUser(context.Background(), 2, models.RoleUser, 2, &models.UpdateUserRequest{
		Email: "  Mixed@Case.COM ",
	})

	require.NoError(t, err)
	require.Len(t, userRepo.updated, 1)
	assert.Equal(t, "mixed@case.com", userRepo.updated[0].Email)
}
