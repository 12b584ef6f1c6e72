//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-auth-service/internal/cache"
	"go-auth-service/internal/config"
	"go-auth-service/internal/database"
	"go-auth-service/internal/handler"
	"go-auth-service/internal/hasher"
	"go-auth-service/internal/middleware"
	"go-auth-service/internal/repository"
	"go-auth-service/internal/router"
	"go-auth-service/internal/service"
	"go-auth-service/internal/token"
)

// newServer wires the service against live Postgres and Redis. Set
// TEST_DATABASE_URL and TEST_REDIS_URL to run these tests.
func newServer(t *testing.T) (*httptest.Server, *repository.SessionRepository) {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	redisURL := os.Getenv("TEST_REDIS_URL")
	if databaseURL == "" || redisURL == "" {
		t.Skip("TEST_DATABASE_URL and TEST_REDIS_URL are required for integration tests")
	}

	ctx := context.Background()

	db, err := database.New(ctx, databaseURL, 5, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	_, err = db.Pool.Exec(ctx, `TRUNCATE users CASCADE`)
	require.NoError(t, err)

	sessionCache, err := cache.New(ctx, redisURL)
	require.NoError(t, err)
	t.Cleanup(sessionCache.Close)
	require.NoError(t, sessionCache.Client.FlushDB(ctx).Err())

	codec := token.NewCodec("it-access-secret", "it-refresh-secret", 15*time.Minute, 24*time.Hour)
	userRepo := repository.NewUserRepository(db.Pool)
	sessionRepo := repository.NewSessionRepository(sessionCache.Client)
	authService := service.NewAuthService(userRepo, sessionRepo, hasher.NewBcrypt(), codec)

	cfg := &config.Config{
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(codec), handler.NewAuthHandler(authService)))
	t.Cleanup(server.Close)

	return server, sessionRepo
}

type envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func postParams(t *testing.T, client *http.Client, url string, params any) (*http.Response, envelope) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"params": params})
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func refreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

func registerParams(email string) map[string]any {
	return map[string]any{
		"name":        "Alice",
		"email":       email,
		"password":    "abcdef",
		"role":        "user",
		"phoneNumber": 1234567890,
	}
}

func fmtURL(server *httptest.Server, path string) string {
	return fmt.Sprintf("%s/api/auth/%s", server.URL, path)
}
