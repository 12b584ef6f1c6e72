package model

import "errors"

var (
	// Input errors
	ErrParamsRequired = errors.New("params are required")

	// User related errors
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")

	// Refresh token lifecycle errors. All map to 403 except the missing
	// cookie, which is a 401 asking the client to log in again.
	ErrNoRefreshToken      = errors.New("no refresh token provided")
	ErrRefreshExpired      = errors.New("refresh token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrNoSessionStored     = errors.New("no refresh token stored")
	ErrTokenMismatch       = errors.New("refresh token mismatch")

	// Access gate
	ErrUnauthorized = errors.New("unauthorized")
)
