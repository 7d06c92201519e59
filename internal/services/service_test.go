package services

import (
	"context"
	"errors"

	"github.com/iotregistry/backend/internal/models"
)

// mockUserRepository is an in-memory implementation of UserRepository
type mockUserRepository struct {
	users      map[string]*models.User
	err        error
	getErr     error
	existsErr  error
	createErr  error
	updateErr  error
	deleteErr  error
	createCall int
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.createCall++
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = models.NewID()
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.users[username]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.users[username]
	return ok, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) DeleteByUsername(ctx context.Context, username string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[username]; !ok {
		return models.ErrUserNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	user, ok := m.users[username]
	if !ok {
		return models.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// mockTokenIssuer is a mock implementation of TokenIssuer
type mockTokenIssuer struct {
	token    string
	err      error
	username string
	email    string
	role     string
}

func (m *mockTokenIssuer) Generate(username, email, role string) (string, error) {
	m.username, m.email, m.role = username, email, role
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

// mockDeviceRepository is an in-memory implementation of DeviceRepository
type mockDeviceRepository struct {
	devices   []models.Device
	err       error
	existsErr error
	createErr error
}

func (m *mockDeviceRepository) Exists(ctx context.Context, deviceID, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, d := range m.devices {
		if d.DeviceID == deviceID && d.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	if m.createErr != nil {
		return m.createErr
	}
	device.ID = models.NewID()
	m.devices = append(m.devices, *device)
	return nil
}

func (m *mockDeviceRepository) GetByUsername(ctx context.Context, username string) ([]models.Device, error) {
	if m.err != nil {
		return nil, m.err
	}
	var devices []models.Device
	for _, d := range m.devices {
		if d.Username == username {
			devices = append(devices, d)
		}
	}
	return devices, nil
}

var errStore = errors.New("store error")

func strPtr(s string) *string {
	return &s
}
