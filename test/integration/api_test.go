package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/iotregistry/backend/internal/auth"
	authMiddleware "github.com/iotregistry/backend/internal/auth/middleware"
	"github.com/iotregistry/backend/internal/config"
	"github.com/iotregistry/backend/internal/database"
	"github.com/iotregistry/backend/internal/handlers"
	"github.com/iotregistry/backend/internal/models"
	"github.com/iotregistry/backend/internal/repositories"
	"github.com/iotregistry/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var (
	testConn   *database.Connection
	testRouter chi.Router
	testLogger *zap.Logger
)

// setupTestRouter creates a test router with all handlers
func setupTestRouter(conn *database.Connection, cfg *config.Config, logger *zap.Logger) chi.Router {
	tokenGen := auth.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	userRepo := repositories.NewUserRepository(conn, logger)
	deviceRepo := repositories.NewDeviceRepository(conn, logger)

	requireToken := authMiddleware.AuthMiddleware(tokenGen)
	noLimit := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	handlers.NewHealthHandler(conn, logger).RegisterRoutes(r)
	handlers.NewUserHandler(services.NewUserService(userRepo, tokenGen, logger), logger).RegisterRoutes(r)
	handlers.NewAuthHandler(services.NewAuthService(userRepo, tokenGen, logger), logger).RegisterRoutes(r, noLimit, requireToken)
	handlers.NewDeviceHandler(services.NewDeviceService(deviceRepo, logger), logger).RegisterRoutes(r, requireToken)
	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	if cfg.Database.Host == "" {
		fmt.Println("TEST_MONGO_HOST is not set, skipping integration tests")
		os.Exit(0)
	}

	testConn = database.NewConnection(testLogger)
	ctx := context.Background()
	if err := testConn.Connect(ctx, cfg.URI(), cfg.Database.DBName); err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	db, _ := testConn.Database()
	if err := db.Drop(ctx); err != nil {
		panic(fmt.Sprintf("Failed to drop test database: %v", err))
	}
	if err := testConn.EnsureIndexes(ctx); err != nil {
		panic(fmt.Sprintf("Failed to create indexes: %v", err))
	}

	testRouter = setupTestRouter(testConn, cfg, testLogger)

	code := m.Run()

	db.Drop(ctx)
	testConn.Disconnect(ctx)
	os.Exit(code)
}

// cleanupTestData removes all documents from both collections
func cleanupTestData(t *testing.T) {
	t.Helper()
	db, err := testConn.Database()
	require.NoError(t, err)
	_, err = db.Collection(database.UsersCollection).DeleteMany(context.Background(), bson.M{})
	require.NoError(t, err, "Failed to cleanup users")
	_, err = db.Collection(database.DevicesCollection).DeleteMany(context.Background(), bson.M{})
	require.NoError(t, err, "Failed to cleanup devices")
}

func doJSON(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, username, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"secret123","email":%q,"name":"Test","country":"CL","city":"Santiago"}`, username, email)
	w := doJSON(t, http.MethodPost, "/usuarios", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func TestIntegration_UserLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cleanupTestData(t)

	registerUser(t, "alice", "alice@example.com")

	t.Run("duplicate username", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/usuarios",
			`{"username":"alice","password":"other123","email":"new@example.com","name":"A","country":"CL","city":"X"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "user already exists")
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/usuarios",
			`{"username":"bob","password":"other123","email":"alice@example.com","name":"B","country":"CL","city":"X"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email already in use")
	})

	t.Run("list omits password", func(t *testing.T) {
		w := doJSON(t, http.MethodGet, "/usuarios", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var users []map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&users))
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0]["username"])
		assert.Equal(t, "usuario", users[0]["role"])
		assert.NotEmpty(t, users[0]["id"])
		assert.NotContains(t, users[0], "password")
	})

	t.Run("stored password is hashed", func(t *testing.T) {
		db, err := testConn.Database()
		require.NoError(t, err)
		var stored models.User
		require.NoError(t, db.Collection(database.UsersCollection).FindOne(context.Background(), bson.M{"username": "alice"}).Decode(&stored))
		assert.NotEqual(t, "secret123", stored.PasswordHash)
		assert.True(t, auth.VerifyPassword("secret123", stored.PasswordHash))
	})

	t.Run("login and profile", func(t *testing.T) {
		w := login(t, "alice", "secret123")
		require.Equal(t, http.StatusOK, w.Code)
		var resp models.TokenResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		w = doJSON(t, http.MethodGet, "/perfil", "", resp.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)
		var profile map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&profile))
		assert.Equal(t, "profile accessed successfully", profile["message"])
		user := profile["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
		assert.Equal(t, "usuario", user["role"])
	})

	t.Run("login failures are uniform", func(t *testing.T) {
		wrong := login(t, "alice", "bad-password")
		unknown := login(t, "nobody", "secret123")
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("update password", func(t *testing.T) {
		w := doJSON(t, http.MethodPatch, "/usuarios/alice", `{}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, http.MethodPatch, "/usuarios/ghost", `{"password":"whatever"}`, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, http.MethodPatch, "/usuarios/alice", `{"password":"changed123"}`, "")
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, http.StatusUnauthorized, login(t, "alice", "secret123").Code)
		assert.Equal(t, http.StatusOK, login(t, "alice", "changed123").Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, http.MethodDelete, "/usuarios/alice", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user 'alice' deleted successfully")

		w = doJSON(t, http.MethodDelete, "/usuarios/alice", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestIntegration_Devices(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cleanupTestData(t)

	aliceToken := registerUser(t, "alice", "alice@example.com")
	bobToken := registerUser(t, "bob", "bob@example.com")
	device := `{"device_id":"sensor-1","name":"Kitchen"}`

	w := doJSON(t, http.MethodPost, "/dispositivos", device, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, http.MethodPost, "/dispositivos", device, aliceToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "device created successfully")

	w = doJSON(t, http.MethodPost, "/dispositivos", device, aliceToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "device already exists for this user")

	w = doJSON(t, http.MethodPost, "/dispositivos", device, bobToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, http.MethodGet, "/dispositivos", "", aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	var devices []models.DeviceResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "alice", devices[0].Username)
}

func TestIntegration_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	w := doJSON(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
