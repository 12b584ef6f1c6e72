package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-auth-service/internal/token"
)

type stubVerifier struct {
	claims *token.Claims
	err    error
}

func (v *stubVerifier) VerifyAccessToken(string) (*token.Claims, error) {
	return v.claims, v.err
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	claims := &token.Claims{UserID: "user-1", Email: "a@x.com", Role: "user"}

	protected := func(mw *AuthMiddleware) (http.Handler, *bool, **token.Claims) {
		called := false
		var seen *token.Claims
		h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			seen, _ = ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		return h, &called, &seen
	}

	t.Run("missing header", func(t *testing.T) {
		h, called, _ := protected(NewAuthMiddleware(&stubVerifier{claims: claims}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, *called)
		require.JSONEq(t,
			`{"success":false,"status":401,"message":"Unauthorized","data":[]}`,
			rec.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		h, called, _ := protected(NewAuthMiddleware(&stubVerifier{err: errors.New("bad token")}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, *called)
	})

	t.Run("bearer prefixed token", func(t *testing.T) {
		h, called, seen := protected(NewAuthMiddleware(&stubVerifier{claims: claims}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, *called)
		require.Equal(t, "user-1", (*seen).UserID)
	})

	t.Run("bare token", func(t *testing.T) {
		h, called, _ := protected(NewAuthMiddleware(&stubVerifier{claims: claims}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("Authorization", "some-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, *called)
	})
}
