package repositories

import (
	"context"
	"testing"

	"github.com/iotregistry/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

const devicesNS = "iot.dispositivos"

func TestNewDeviceRepository(t *testing.T) {
	logger := zap.NewNop()
	provider := &mockProvider{}

	repo := NewDeviceRepository(provider, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, provider, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestDeviceRepository_Exists(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("exists", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, devicesNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}}))

		exists, err := repo.Exists(context.Background(), "sensor-1", "alice")

		require.NoError(mt, err)
		assert.True(mt, exists)
	})

	mt.Run("does not exist", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, devicesNS, mtest.FirstBatch))

		exists, err := repo.Exists(context.Background(), "sensor-1", "alice")

		require.NoError(mt, err)
		assert.False(mt, exists)
	})

	mt.Run("database error", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(commandError()))

		exists, err := repo.Exists(context.Background(), "sensor-1", "alice")

		assert.Error(mt, err)
		assert.False(mt, exists)
	})

	mt.Run("not connected", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{err: errNotConnected}, zap.NewNop())

		_, err := repo.Exists(context.Background(), "sensor-1", "alice")
		assert.ErrorIs(mt, err, models.ErrDatabaseUnavailable)
	})
}

func TestDeviceRepository_Create(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		device := &models.Device{DeviceID: "sensor-1", Name: "Sensor", Username: "alice"}
		err := repo.Create(context.Background(), device)

		require.NoError(mt, err)
		assert.False(mt, device.ID.IsZero())
	})

	mt.Run("duplicate device for user", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: iot.dispositivos index: device_owner_unique",
		}))

		err := repo.Create(context.Background(), &models.Device{DeviceID: "sensor-1", Username: "alice"})
		assert.ErrorIs(mt, err, models.ErrDeviceExists)
	})

	mt.Run("database error", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(commandError()))

		err := repo.Create(context.Background(), &models.Device{DeviceID: "sensor-1", Username: "alice"})
		assert.Error(mt, err)
		assert.NotErrorIs(mt, err, models.ErrDeviceExists)
	})
}

func TestDeviceRepository_GetByUsername(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, devicesNS, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "device_id", Value: "sensor-1"},
				{Key: "name", Value: "Kitchen"},
				{Key: "username", Value: "alice"},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "device_id", Value: "sensor-2"},
				{Key: "name", Value: "Garage"},
				{Key: "username", Value: "alice"},
			},
		))

		devices, err := repo.GetByUsername(context.Background(), "alice")

		require.NoError(mt, err)
		require.Len(mt, devices, 2)
		assert.Equal(mt, "sensor-1", devices[0].DeviceID)
		assert.Equal(mt, "Garage", devices[1].Name)
		assert.Equal(mt, "alice", devices[1].Username)
	})

	mt.Run("no devices", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, devicesNS, mtest.FirstBatch))

		devices, err := repo.GetByUsername(context.Background(), "alice")

		require.NoError(mt, err)
		assert.Empty(mt, devices)
	})

	mt.Run("database error", func(mt *mtest.T) {
		repo := NewDeviceRepository(&mockProvider{db: mt.DB}, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(commandError()))

		devices, err := repo.GetByUsername(context.Background(), "alice")

		assert.Error(mt, err)
		assert.Nil(mt, devices)
	})
}
