// Package database owns the MongoDB client shared by all repositories
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names
const (
	UsersCollection   = "usuarios"
	DevicesCollection = "dispositivos"
)

// ErrNotConnected is returned by Database before a successful Connect or after Disconnect
var ErrNotConnected = errors.New("database not initialized")

const connectTimeout = 10 * time.Second

// Connection holds the process-wide MongoDB client.
//
// It is created by the entry point and injected into repositories. A zero or disconnected
// Connection is valid to use: Database reports ErrNotConnected.
type Connection struct {
	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewConnection creates a Connection that is not yet connected
func NewConnection(logger *zap.Logger) *Connection {
	return &Connection{logger: logger}
}

// NewConnectionFromDatabase wraps an already opened database, used by tests
func NewConnectionFromDatabase(db *mongo.Database, logger *zap.Logger) *Connection {
	return &Connection{client: db.Client(), db: db, logger: logger}
}

// Connect opens a client for uri, pings the primary and selects dbName
func (c *Connection) Connect(ctx context.Context, uri, dbName string) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout).
		SetMaxPoolSize(100))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	c.mu.Lock()
	c.client = client
	c.db = client.Database(dbName)
	c.mu.Unlock()

	c.logger.Info("Connected to MongoDB", zap.String("database", dbName))
	return nil
}

// Database returns the application database or ErrNotConnected
func (c *Connection) Database() (*mongo.Database, error) {
	if c == nil {
		return nil, ErrNotConnected
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.db == nil {
		return nil, ErrNotConnected
	}
	return c.db, nil
}

// Ping checks that the database answers
func (c *Connection) Ping(ctx context.Context) error {
	db, err := c.Database()
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, readpref.Primary())
}

// Disconnect closes the client. Calling it on a connection that is not connected is a no-op.
func (c *Connection) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.db = nil
	c.mu.Unlock()

	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}

	c.logger.Info("MongoDB connection closed")
	return nil
}

// EnsureIndexes creates the unique indexes that back username, email and per-user device uniqueness
func (c *Connection) EnsureIndexes(ctx context.Context) error {
	db, err := c.Database()
	if err != nil {
		return err
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	}
	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", UsersCollection, err)
	}

	deviceIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "device_id", Value: 1}, {Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("device_owner_unique"),
	}
	if _, err := db.Collection(DevicesCollection).Indexes().CreateOne(ctx, deviceIndex); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", DevicesCollection, err)
	}

	return nil
}
