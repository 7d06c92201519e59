package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iotregistry/backend/internal/auth/middleware"
	"github.com/iotregistry/backend/internal/models"
	"go.uber.org/zap"
)

// DeviceService is the interface that wraps methods for device business logic.
type DeviceService interface {
	// Method Create registers a device owned by "username".
	//
	// If device_id or name is missing, *models.ValidationError is returned.
	// If the user already registered such device_id, models.ErrDeviceExists is returned.
	Create(ctx context.Context, username string, req *models.CreateDeviceRequest) error
	// Method GetByUsername lists the devices owned by "username".
	GetByUsername(ctx context.Context, username string) ([]models.DeviceResponse, error)
}

// DeviceHandler handles HTTP requests for devices
type DeviceHandler struct {
	BaseHandler
	service DeviceService
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(svc DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all device handler routes behind authMiddleware
func (h *DeviceHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/dispositivos", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.GetAll)
	})
}

// Create handles POST /dispositivos
// @Summary Register a device
// @Description Register a device owned by the authenticated user
// @Tags devices
// @Accept json
// @Produce json
// @Param device body models.CreateDeviceRequest true "Device data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} map[string]string "Invalid input or device already exists"
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /dispositivos [post]
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, models.ErrNotAuthenticated.Error())
		return
	}

	var req models.CreateDeviceRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Create(r.Context(), claims.Username, &req); err != nil {
		h.respondServiceError(w, err, "failed to create device")
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{Message: "device created successfully"})
}

// GetAll handles GET /dispositivos
// @Summary List own devices
// @Description List the devices owned by the authenticated user
// @Tags devices
// @Produce json
// @Success 200 {array} models.DeviceResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /dispositivos [get]
func (h *DeviceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, models.ErrNotAuthenticated.Error())
		return
	}

	devices, err := h.service.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		h.respondServiceError(w, err, "failed to get devices")
		return
	}

	h.respondJSON(w, http.StatusOK, devices)
}
