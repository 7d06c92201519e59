package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iotregistry/backend/internal/auth"
	"github.com/iotregistry/backend/internal/models"
	"go.uber.org/zap"
)

// UserFinder retrieves users with their password hash
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type authService struct {
	users  UserFinder
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserFinder, tokens TokenIssuer, logger *zap.Logger) *authService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login checks the credentials and returns an access token carrying username and role.
//
// Unknown users and wrong passwords both return models.ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, &models.ValidationError{Message: "username and password are required"}
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, models.ErrUserNotFound) {
		s.logger.Debug("login for unknown user", zap.String("username", req.Username))
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.logger.Debug("login with wrong password", zap.String("username", req.Username))
		return nil, models.ErrInvalidCredentials
	}

	role := user.Role
	if role == "" {
		role = models.DefaultRole
	}

	token, err := s.tokens.Generate(user.Username, "", role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return models.NewTokenResponse(token), nil
}
