package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/iotregistry/backend/internal/models"
	"github.com/iotregistry/backend/internal/validation"
	"go.uber.org/zap"
)

// DeviceRepository is the interface that wraps methods for "dispositivos" collection data access
type DeviceRepository interface {
	// Method Exists checks if the user already owns a device with such device ID.
	Exists(ctx context.Context, deviceID, username string) (bool, error)
	// Method Create inserts a new device and assigns its ID.
	//
	// If the (device ID, username) pair is taken, models.ErrDeviceExists is returned.
	Create(ctx context.Context, device *models.Device) error
	// Method GetByUsername retrieves the devices owned by a user.
	GetByUsername(ctx context.Context, username string) ([]models.Device, error)
}

type deviceService struct {
	repo   DeviceRepository
	logger *zap.Logger
}

// NewDeviceService creates a new device service
func NewDeviceService(repo DeviceRepository, logger *zap.Logger) *deviceService {
	return &deviceService{
		repo:   repo,
		logger: logger,
	}
}

// Create registers a device for username.
// The same device ID may be registered by different users.
func (s *deviceService) Create(ctx context.Context, username string, req *models.CreateDeviceRequest) error {
	req.DeviceID = strings.TrimSpace(req.DeviceID)
	if err := validation.Struct(req); err != nil {
		return err
	}

	exists, err := s.repo.Exists(ctx, req.DeviceID, username)
	if err != nil {
		return fmt.Errorf("failed to check device: %w", err)
	}
	if exists {
		return models.ErrDeviceExists
	}

	device := &models.Device{
		DeviceID: req.DeviceID,
		Name:     req.Name,
		Username: username,
	}
	if err := s.repo.Create(ctx, device); err != nil {
		return err
	}

	s.logger.Info("device created", zap.String("device_id", device.DeviceID), zap.String("username", username))
	return nil
}

// GetByUsername lists the devices owned by username
func (s *deviceService) GetByUsername(ctx context.Context, username string) ([]models.DeviceResponse, error) {
	devices, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	response := make([]models.DeviceResponse, 0, len(devices))
	for i := range devices {
		response = append(response, devices[i].ToResponse())
	}

	return response, nil
}
