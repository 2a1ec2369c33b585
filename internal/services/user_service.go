package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbitlearn/backend/internal/models"
)

// UserUpdateRepository is the interface that wraps methods for user reads and partial updates
type UserUpdateRepository interface {
	// Method GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method Update applies a partial update to a user.
	Update(ctx context.Context, user *models.User) error
	// Method ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// userService implements user read/update business logic
type userService struct {
	userRepo UserUpdateRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo UserUpdateRepository) *userService {
	return &userService{
		userRepo: userRepo,
	}
}

// GetUser returns a user by ID. Regular users can only read their own row.
func (s *userService) GetUser(ctx context.Context, requesterID int, requesterRole models.Role, targetID int) (*models.User, error) {
	if requesterID != targetID && requesterRole != models.RoleAdmin {
		return nil, fmt.Errorf("access denied")
	}

	return s.userRepo.GetByID(ctx, targetID)
}

// UpdateUser applies a partial update to a user. Regular users can only update their own row.
func (s *userService) UpdateUser(ctx context.Context, requesterID int, requesterRole models.Role, targetID int, req *models.UpdateUserRequest) (*models.User, error) {
	if requesterID != targetID && requesterRole != models.RoleAdmin {
		return nil, fmt.Errorf("access denied")
	}

	user := &models.User{ID: targetID}

	if req.Email != "" {
		normalizedEmail := strings.TrimSpace(strings.ToLower(req.Email))
		if !emailRegex.MatchString(normalizedEmail) {
			return nil, fmt.Errorf("invalid email format")
		}
		exists, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("email already exists")
		}
		user.Email = normalizedEmail
	}

	if req.Username != "" {
		normalizedUsername := strings.TrimSpace(req.Username)
		if len(normalizedUsername) < 3 {
			return nil, fmt.Errorf("username must be at least 3 characters long")
		}
		exists, err := s.userRepo.ExistsByUsername(ctx, normalizedUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("username already exists")
		}
		user.Username = normalizedUsername
	}

	if user.Email == "" && user.Username == "" {
		return nil, fmt.Errorf("no fields to update")
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, targetID)
}
