package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/iotregistry/backend/internal/database"
	"github.com/iotregistry/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// deviceRepository implements DeviceRepository on the "dispositivos" collection
type deviceRepository struct {
	db     DatabaseProvider
	logger *zap.Logger
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db DatabaseProvider, logger *zap.Logger) *deviceRepository {
	return &deviceRepository{
		db:     db,
		logger: logger,
	}
}

// Exists checks if the user already registered a device with deviceID
func (r *deviceRepository) Exists(ctx context.Context, deviceID, username string) (bool, error) {
	coll, err := collection(r.db, database.DevicesCollection)
	if err != nil {
		return false, err
	}

	filter := bson.D{{Key: "device_id", Value: deviceID}, {Key: "username", Value: username}}
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err = coll.FindOne(ctx, filter, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("failed to check device existence", zap.Error(err),
			zap.String("device_id", deviceID), zap.String("username", username))
		return false, fmt.Errorf("failed to check device existence: %w", err)
	}

	return true, nil
}

// Create inserts a new device and assigns its ID
func (r *deviceRepository) Create(ctx context.Context, device *models.Device) error {
	coll, err := collection(r.db, database.DevicesCollection)
	if err != nil {
		return err
	}

	if device.ID.IsZero() {
		device.ID = models.NewID()
	}

	if _, err := coll.InsertOne(ctx, device); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDeviceExists
		}
		r.logger.Error("failed to create device", zap.Error(err), zap.String("device_id", device.DeviceID))
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// GetByUsername retrieves the devices owned by a user, ordered by device_id
func (r *deviceRepository) GetByUsername(ctx context.Context, username string) ([]models.Device, error) {
	coll, err := collection(r.db, database.DevicesCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "device_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{{Key: "username", Value: username}}, opts)
	if err != nil {
		r.logger.Error("failed to find devices", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to find devices: %w", err)
	}
	defer cursor.Close(ctx)

	devices := []models.Device{}
	if err := cursor.All(ctx, &devices); err != nil {
		r.logger.Error("failed to decode devices", zap.Error(err))
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}

	return devices, nil
}
