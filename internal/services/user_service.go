package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iotregistry/backend/internal/auth"
	"github.com/iotregistry/backend/internal/models"
	"github.com/iotregistry/backend/internal/validation"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for "usuarios" collection data access
type UserRepository interface {
	// Method Create inserts a new user and assigns its ID.
	//
	// If the username or email is already taken, models.ErrUserExists or models.ErrEmailExists is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetAll retrieves all users without their password hash.
	GetAll(ctx context.Context) ([]models.User, error)
	// Method GetByUsername retrieves a user including the password hash.
	//
	// If user with such username does not exist, models.ErrUserNotFound is returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method DeleteByUsername deletes a user.
	//
	// If nothing matched, models.ErrUserNotFound is returned.
	DeleteByUsername(ctx context.Context, username string) error
	// Method UpdatePassword replaces the stored password hash.
	//
	// If nothing matched, models.ErrUserNotFound is returned.
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	Generate(username, email, role string) (string, error)
}

type userService struct {
	repo   UserRepository
	tokens TokenIssuer
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository, tokens TokenIssuer, logger *zap.Logger) *userService {
	return &userService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// GetAll retrieves all users in their public representation
func (s *userService) GetAll(ctx context.Context) ([]models.UserResponse, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	response := make([]models.UserResponse, 0, len(users))
	for i := range users {
		response = append(response, users[i].ToResponse())
	}

	return response, nil
}

// Create registers a new user and returns an access token for it.
//
// Username is checked before email, so a request colliding on both reports the username.
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, models.ErrUserExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, models.ErrEmailExists
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.DefaultRole
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		Name:         req.Name,
		Country:      req.Country,
		City:         req.City,
		Company:      req.Company,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("username", user.Username), zap.String("id", user.ID.String()))

	token, err := s.tokens.Generate(user.Username, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return models.NewTokenResponse(token), nil
}

// Delete removes a user by username
func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.repo.DeleteByUsername(ctx, username); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

// Update applies a partial update; only the password can change.
//
// The user must exist before an empty payload is reported, matching the order clients observe.
func (s *userService) Update(ctx context.Context, username string, req *models.UpdateUserRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err != nil {
		return err
	}

	if req.IsEmpty() {
		return models.ErrNoUpdateFields
	}

	passwordHash, err := hashPassword(*req.Password)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, username, passwordHash); err != nil {
		return err
	}

	s.logger.Info("user password updated", zap.String("username", username))
	return nil
}

// hashPassword hashes the password, reporting over-long input as a validation error
func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", &models.ValidationError{Message: err.Error()}
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}
