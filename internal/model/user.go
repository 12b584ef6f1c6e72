package model

import "time"

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

// User is the persisted account record. The password hash is never
// serialized into API responses.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	PhoneNumber  int64     `json:"phoneNumber"`
	IsActive     bool      `json:"isActive"`
	Address      string    `json:"address,omitempty"`
	CreatedBy    *string   `json:"createdBy,omitempty"`
	ModifiedBy   *string   `json:"modifiedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SessionData is a single entry of the login/refresh success payload.
type SessionData struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// AuthResult is what a successful login or refresh produces: the response
// payload plus the refresh token the handler turns into a cookie.
type AuthResult struct {
	Session      SessionData
	RefreshToken string
	RefreshTTL   time.Duration
}
