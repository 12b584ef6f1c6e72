package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go-auth-service/internal/model"
)

const sessionKeyPrefix = "refresh_token:"

// sessionEntry is the serialized cache value. The wrapper object matches
// what deployed caches already hold under refresh_token:<id> keys.
type sessionEntry struct {
	Token string `json:"token"`
}

// SessionRepository tracks the single live refresh token per user identity.
// The cache copy is authoritative: a cookie that disagrees with it loses.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Put overwrites any existing entry for the identity. Last writer wins.
func (r *SessionRepository) Put(ctx context.Context, userID string, refreshToken string, ttl time.Duration) error {
	raw, err := json.Marshal(sessionEntry{Token: refreshToken})
	if err != nil {
		return fmt.Errorf("marshal session entry: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+userID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store session entry: %w", err)
	}
	return nil
}

// Get returns the live refresh token for the identity, or ErrNoSessionStored
// when none exists (logged out, never logged in, or rotated away).
func (r *SessionRepository) Get(ctx context.Context, userID string) (string, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNoSessionStored
	}
	if err != nil {
		return "", fmt.Errorf("load session entry: %w", err)
	}

	var entry sessionEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", fmt.Errorf("decode session entry: %w", err)
	}
	return entry.Token, nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("delete session entry: %w", err)
	}
	return nil
}
