package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-auth-service/internal/model"
	"go-auth-service/pkg/apierror"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	if data == nil {
		data = []any{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Response{
		Success: status < 400,
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// writeError maps a flow failure to its wire status and message. The first
// failing step of a flow lands here; nothing after it ran.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
	case errors.Is(err, model.ErrParamsRequired):
		status = http.StatusBadRequest
		message = "params are required"
	case errors.Is(err, model.ErrUserExists):
		// 400 rather than 409: existing clients depend on this mapping.
		status = http.StatusBadRequest
		message = "User already exists"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, model.ErrInvalidPassword):
		status = http.StatusUnauthorized
		message = "Invalid password"
	case errors.Is(err, model.ErrNoRefreshToken):
		status = http.StatusUnauthorized
		message = "No refresh token provided please login again"
	case errors.Is(err, model.ErrRefreshExpired):
		status = http.StatusForbidden
		message = "Refresh token expired. Please login again."
	case errors.Is(err, model.ErrInvalidRefreshToken):
		status = http.StatusForbidden
		message = "Invalid refresh token"
	case errors.Is(err, model.ErrNoSessionStored):
		status = http.StatusForbidden
		message = "No refresh token stored"
	case errors.Is(err, model.ErrTokenMismatch):
		status = http.StatusForbidden
		message = "Refresh token mismatch"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Unauthorized"
	default:
		// Store, cache, signing and hashing failures end up here.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeEnvelope(w, status, message, []any{})
}
