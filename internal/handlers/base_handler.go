package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iotregistry/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler holds helpers shared by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondServiceError translates an error returned by a service into an HTTP response.
//
// "fallback" is sent for errors that are not part of the API contract.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.respondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, models.ErrDatabaseUnavailable):
		h.logger.Error("database unavailable", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, models.ErrDatabaseUnavailable.Error())
	case errors.Is(err, models.ErrUserExists),
		errors.Is(err, models.ErrEmailExists),
		errors.Is(err, models.ErrDeviceExists),
		errors.Is(err, models.ErrNoUpdateFields):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUserNotFound):
		h.respondError(w, http.StatusNotFound, models.ErrUserNotFound.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.respondError(w, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())
	default:
		h.logger.Error(fallback, zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON decodes the request body into dst, responding with 400 on failure
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debug("failed to decode request body", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
