package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/iotregistry/backend/internal/auth"
	"github.com/iotregistry/backend/internal/auth/middleware"
	"github.com/iotregistry/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Login checks the credentials and returns an access token.
	//
	// "req" parameter contains username and password.
	//
	// If either field is empty, *models.ValidationError is returned.
	// If the user does not exist or the password does not match, models.ErrInvalidCredentials is returned
	// in both cases, together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
}

// ProfileResponse is returned by the profile endpoint
type ProfileResponse struct {
	Message string       `json:"message"`
	User    *auth.Claims `json:"user"`
}

// AuthHandler handles login and profile HTTP requests
type AuthHandler struct {
	BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all auth handler routes.
// "loginLimiter" wraps the login route only, "authMiddleware" guards the profile route.
func (h *AuthHandler) RegisterRoutes(r chi.Router, loginLimiter, authMiddleware func(http.Handler) http.Handler) {
	r.With(loginLimiter).Post("/login", h.Login)
	r.With(authMiddleware).Get("/perfil", h.Profile)
}

// Login handles POST /login
// @Summary Log in
// @Description OAuth2 password grant, returns a bearer access token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param grant_type formData string false "Must be \"password\" when present"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	if grantType := r.PostForm.Get("grant_type"); grantType != "" && grantType != "password" {
		h.respondError(w, http.StatusBadRequest, "unsupported grant_type")
		return
	}

	req := &models.LoginRequest{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "failed to log in")
		return
	}

	h.respondJSON(w, http.StatusOK, token)
}

// Profile handles GET /perfil
// @Summary Current user profile
// @Description Return the claims of the presented access token
// @Tags auth
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} map[string]string
// @Security ApiKeyAuth
// @Router /perfil [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, models.ErrNotAuthenticated.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, ProfileResponse{
		Message: "profile accessed successfully",
		User:    claims,
	})
}
