package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iotregistry/backend/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user account business logic.
type UserService interface {
	// Method GetAll retrieves all registered users without their password hash.
	//
	// If no user is registered, an empty non-nil slice is returned.
	// If the database is unreachable, an error wrapping models.ErrDatabaseUnavailable is returned.
	GetAll(ctx context.Context) ([]models.UserResponse, error)
	// Method Create validates and registers a new user and returns an access token for it.
	//
	// "req" parameter contains username, password, email, name, country, city and optional company and role.
	// The password is stored only as a bcrypt hash.
	//
	// If the input is invalid, *models.ValidationError is returned.
	// If the username or email is taken, models.ErrUserExists or models.ErrEmailExists is returned together with "nil" value.
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.TokenResponse, error)
	// Method Delete removes the user with such username.
	//
	// If the user does not exist, models.ErrUserNotFound is returned.
	Delete(ctx context.Context, username string) error
	// Method Update applies a partial update to the user with such username; only the password can change.
	//
	// If the user does not exist, models.ErrUserNotFound is returned.
	// If "req" carries no fields, models.ErrNoUpdateFields is returned.
	Update(ctx context.Context, username string, req *models.UpdateUserRequest) error
}

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	BaseHandler
	service UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all user handler routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/usuarios", func(r chi.Router) {
		r.Get("/", h.GetAll)
		r.Post("/", h.Create)
		r.Delete("/{username}", h.Delete)
		r.Patch("/{username}", h.Update)
	})
}

// GetAll handles GET /usuarios
// @Summary List users
// @Description Get all registered users without their password hash
// @Tags users
// @Produce json
// @Success 200 {array} models.UserResponse
// @Failure 500 {object} map[string]string
// @Router /usuarios [get]
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to get users")
		return
	}

	h.respondJSON(w, http.StatusOK, users)
}

// Create handles POST /usuarios
// @Summary Register a user
// @Description Register a new user and return an access token for it
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.CreateUserRequest true "User data"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} map[string]string "Invalid input or user already exists"
// @Failure 500 {object} map[string]string
// @Router /usuarios [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	token, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to create user")
		return
	}

	h.respondJSON(w, http.StatusOK, token)
}

// Delete handles DELETE /usuarios/{username}
// @Summary Delete a user
// @Description Delete a user by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /usuarios/{username} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.service.Delete(r.Context(), username); err != nil {
		h.respondServiceError(w, err, "failed to delete user")
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("user '%s' deleted successfully", username),
	})
}

// Update handles PATCH /usuarios/{username}
// @Summary Update a user
// @Description Replace the password of a user
// @Tags users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param user body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} map[string]string "Invalid input or no fields supplied"
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /usuarios/{username} [patch]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req models.UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Update(r.Context(), username, &req); err != nil {
		h.respondServiceError(w, err, "failed to update user")
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("user '%s' updated successfully", username),
	})
}
