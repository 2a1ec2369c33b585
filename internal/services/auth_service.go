package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/orbitlearn/backend/internal/auth"
	"github.com/orbitlearn/backend/internal/models"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmailOrUsername retrieves a user by email or username.
	//
	// "login" parameter is used to retrieve a user by email or username.
	//
	// If user with such email or username does not exist, the error will be returned together with "nil" value.
	GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// UserTokenRepository is the interface that wraps methods for UserToken table data access
type UserTokenRepository interface {
	// Method Create inserts a new user token into the database.
	Create(ctx context.Context, userToken *models.UserToken) error
	// Method GetByToken retrieves a user token by token string.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// Method UpdateToken replaces an old token string with a new one for a user.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error
	// Method DeleteByToken deletes a user token by token string.
	DeleteByToken(ctx context.Context, token string) error
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	userTokenRepo  UserTokenRepository
	tokenGenerator *auth.TokenGenerator
	passwordHasher PasswordHasher
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	tokenGenerator *auth.TokenGenerator,
	passwordHasher PasswordHasher,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		tokenGenerator: tokenGenerator,
		passwordHasher: passwordHasher,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// passwordRegex validates password: at least 8 chars, uppercase, lowercase, number, special: !_?^&+-=|
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[!_?^&+\-=|]`),
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	// Check user credentials, returns normalized email and username
	normalizedEmail, normalizedUsername, err := checkRegisterCredentials(ctx, s.userRepo, req.Email, req.Username, req.Password)
	if err != nil {
		return "", "", err
	}

	// Hash password
	passwordHash, err := s.passwordHasher.Hash(req.Password)
	if err != nil {
		return "", "", err
	}

	// Create user
	user := &models.User{
		Username:     normalizedUsername,
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleUser, // Default role
	}

	err = s.userRepo.Create(ctx, user)
	if err != nil {
		return "", "", err
	}

	// Generate and save access and refresh tokens
	return generateAndSaveTokens(ctx, s.tokenGenerator, s.userTokenRepo, user.ID, user.Role)
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" {
		return "", "", fmt.Errorf("login cannot be empty")
	}

	if req.Password == "" {
		return "", "", fmt.Errorf("password cannot be empty")
	}

	// Get user by email or username
	user, err := s.userRepo.GetByEmailOrUsername(ctx, req.Login)
	if err != nil {
		return "", "", err
	}

	// Verify password
	if err = s.passwordHasher.Compare(user.PasswordHash, req.Password); err != nil {
		return "", "", fmt.Errorf("invalid credentials")
	}

	// Generate and save access and refresh tokens
	return generateAndSaveTokens(ctx, s.tokenGenerator, s.userTokenRepo, user.ID, user.Role)
}

// Refresh refreshes a user's access token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)

	// Validate refresh token signature and expiry
	if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		// Drop the token if it is still in the database
		s.userTokenRepo.DeleteByToken(ctx, refreshToken)
		return "", "", fmt.Errorf("invalid or expired refresh token")
	}

	// Check that the token was issued by us and is still active
	userToken, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user token by refresh token: %w", err)
	}

	// Get user to retrieve role
	user, err := s.userRepo.GetByID(ctx, userToken.UserID)
	if err != nil {
		return "", "", err
	}

	// Generate new tokens using userToken.UserID to ensure consistency with the token in database
	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(userToken.UserID, int(user.Role))
	if err != nil {
		return "", "", err
	}

	// Update refresh token in database (replaces old token with new one)
	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, userToken.UserID); err != nil {
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}

// Logout invalidates a user's refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	if err := s.userTokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

// GetProfile returns the user for the given ID
func (s *authService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// Method that generates and saves access and refresh tokens
func generateAndSaveTokens(ctx context.Context, tokenGenerator *auth.TokenGenerator,
	userTokenRepo UserTokenRepository, userID int, role models.Role) (string, string, error) {
	// Generate tokens
	accessToken, refreshToken, err := tokenGenerator.GenerateTokens(userID, int(role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	// Save refresh token
	userToken := &models.UserToken{
		UserID: userID,
		Token:  refreshToken,
	}
	if err := userTokenRepo.Create(ctx, userToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Method that combines all checks for register credentials
func checkRegisterCredentials(ctx context.Context, userRepo UserRepository, email, username, password string) (string, string, error) {
	// Normalize email and username
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	normalizedUsername := strings.TrimSpace(username)

	// Validate password
	for _, regex := range passwordRegex {
		if !regex.MatchString(password) {
			return "", "", fmt.Errorf("password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character (!_?^&+-=|)")
		}
	}

	// Validate email and check its uniqueness
	if !emailRegex.MatchString(normalizedEmail) {
		return "", "", fmt.Errorf("invalid email format")
	}
	emailExists, err := userRepo.ExistsByEmail(ctx, normalizedEmail)
	if err != nil {
		return "", "", fmt.Errorf("failed to check email: %w", err)
	}
	if emailExists {
		return "", "", fmt.Errorf("email already exists")
	}

	// Validate username and check its uniqueness
	if len(normalizedUsername) < 3 {
		return "", "", fmt.Errorf("username must be at least 3 characters long")
	}
	usernameExists, err := userRepo.ExistsByUsername(ctx, normalizedUsername)
	if err != nil {
		return "", "", fmt.Errorf("failed to check username: %w", err)
	}
	if usernameExists {
		return "", "", fmt.Errorf("username already exists")
	}

	return normalizedEmail, normalizedUsername, nil
}
