package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iotregistry/backend/internal/database"
	"github.com/iotregistry/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// userRepository implements UserRepository on the "usuarios" collection
type userRepository struct {
	db     DatabaseProvider
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DatabaseProvider, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user and assigns its ID.
// A unique index violation is reported as models.ErrUserExists or models.ErrEmailExists.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	coll, err := collection(r.db, database.UsersCollection)
	if err != nil {
		return err
	}

	if user.ID.IsZero() {
		user.ID = models.NewID()
	}

	if _, err := coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "email") {
				return models.ErrEmailExists
			}
			return models.ErrUserExists
		}
		r.logger.Error("failed to create user", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetAll retrieves every user without the password hash
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	coll, err := collection(r.db, database.UsersCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetProjection(bson.D{{Key: "password", Value: 0}})
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.logger.Error("failed to find users", zap.Error(err))
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		r.logger.Error("failed to decode users", zap.Error(err))
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}

// GetByUsername retrieves a user, including the password hash, by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	coll, err := collection(r.db, database.UsersCollection)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	err = coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *userRepository) exists(ctx context.Context, field, value string) (bool, error) {
	coll, err := collection(r.db, database.UsersCollection)
	if err != nil {
		return false, err
	}

	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err = coll.FindOne(ctx, bson.D{{Key: field, Value: value}}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("failed to check user existence", zap.Error(err), zap.String("field", field))
		return false, fmt.Errorf("failed to check %s existence: %w", field, err)
	}

	return true, nil
}

// DeleteByUsername deletes a user by username, returning models.ErrUserNotFound when nothing matched
func (r *userRepository) DeleteByUsername(ctx context.Context, username string) error {
	coll, err := collection(r.db, database.UsersCollection)
	if err != nil {
		return err
	}

	result, err := coll.DeleteOne(ctx, bson.D{{Key: "username", Value: username}})
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces the password hash of a user
func (r *userRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	coll, err := collection(r.db, database.UsersCollection)
	if err != nil {
		return err
	}

	result, err := coll.UpdateOne(ctx,
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: passwordHash}}}},
	)
	if err != nil {
		r.logger.Error("failed to update user password", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("failed to update user password: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrUserNotFound
	}

	return nil
}
