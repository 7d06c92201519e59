package repositories

import (
	"fmt"

	"github.com/iotregistry/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// DatabaseProvider returns the database handle, or an error when the store is not connected
type DatabaseProvider interface {
	Database() (*mongo.Database, error)
}

// collection resolves a collection, turning a missing connection into models.ErrDatabaseUnavailable
func collection(provider DatabaseProvider, name string) (*mongo.Collection, error) {
	db, err := provider.Database()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDatabaseUnavailable, err)
	}
	return db.Collection(name), nil
}
