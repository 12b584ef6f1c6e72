package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-auth-service/internal/model"
	"go-auth-service/internal/repository"
	"go-auth-service/internal/token"
	"go-auth-service/pkg/apierror"
)

type fakeUserStore struct {
	users       map[string]model.User
	insertCalls int
	failWith    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (s *fakeUserStore) Insert(_ context.Context, u model.User) (model.User, error) {
	if s.failWith != nil {
		return model.User{}, s.failWith
	}
	s.insertCalls++
	for _, existing := range s.users {
		if existing.Email == u.Email || existing.PhoneNumber == u.PhoneNumber {
			return model.User{}, model.ErrUserExists
		}
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeUserStore) FindMatching(_ context.Context, f repository.UserFilter) ([]model.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	matched := []model.User{}
	for _, u := range s.users {
		if f.ID != "" && u.ID != f.ID {
			continue
		}
		if f.Email != "" && u.Email != f.Email {
			continue
		}
		if f.PhoneNumber != 0 && u.PhoneNumber != f.PhoneNumber {
			continue
		}
		matched = append(matched, u)
	}
	return matched, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	if s.failWith != nil {
		return model.User{}, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

type fakeSessionStore struct {
	entries  map[string]string
	failWith error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{entries: map[string]string{}}
}

func (s *fakeSessionStore) Put(_ context.Context, userID string, refreshToken string, _ time.Duration) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.entries[userID] = refreshToken
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, userID string) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	entry, ok := s.entries[userID]
	if !ok {
		return "", model.ErrNoSessionStored
	}
	return entry, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, userID string) error {
	if s.failWith != nil {
		return s.failWith
	}
	delete(s.entries, userID)
	return nil
}

type fakeHasher struct {
	failWith error
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	if h.failWith != nil {
		return "", h.failWith
	}
	return "hashed:" + plain, nil
}

func (h *fakeHasher) Compare(plain string, hash string) bool {
	return hash == "hashed:"+plain
}

type testEnv struct {
	users    *fakeUserStore
	sessions *fakeSessionStore
	codec    *token.Codec
	service  *AuthService
}

func newTestEnv() *testEnv {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	codec := token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	return &testEnv{
		users:    users,
		sessions: sessions,
		codec:    codec,
		service:  NewAuthService(users, sessions, &fakeHasher{}, codec),
	}
}

func registerParams() model.RegisterParams {
	return model.RegisterParams{
		Name:        "Alice",
		Email:       "a@x.com",
		Password:    "abcdef",
		Role:        model.RoleUser,
		PhoneNumber: 1234567890,
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user with hashed password", func(t *testing.T) {
		env := newTestEnv()

		summary, err := env.service.Register(context.Background(), registerParams())
		require.NoError(t, err)
		require.NotEmpty(t, summary.ID)
		require.Equal(t, "Alice", summary.Name)
		require.Equal(t, "a@x.com", summary.Email)

		stored := env.users.users[summary.ID]
		require.Equal(t, "hashed:abcdef", stored.PasswordHash)
		require.True(t, stored.IsActive)
	})

	t.Run("lowercases email", func(t *testing.T) {
		env := newTestEnv()

		p := registerParams()
		p.Email = "Mixed@Case.COM"
		summary, err := env.service.Register(context.Background(), p)
		require.NoError(t, err)
		require.Equal(t, "mixed@case.com", summary.Email)
	})

	t.Run("duplicate email writes nothing", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.Register(context.Background(), registerParams())
		require.NoError(t, err)

		p := registerParams()
		p.PhoneNumber = 9876543210
		_, err = env.service.Register(context.Background(), p)
		require.ErrorIs(t, err, model.ErrUserExists)
		require.Equal(t, 1, env.users.insertCalls)
	})

	t.Run("invalid params map to 400", func(t *testing.T) {
		env := newTestEnv()

		p := registerParams()
		p.Password = "abc"
		_, err := env.service.Register(context.Background(), p)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 400, apiErr.HTTPStatus)
	})

	t.Run("hasher failure is internal", func(t *testing.T) {
		env := newTestEnv()
		env.service = NewAuthService(env.users, env.sessions, &fakeHasher{failWith: errors.New("boom")}, env.codec)

		_, err := env.service.Register(context.Background(), registerParams())
		require.Error(t, err)
		require.NotErrorIs(t, err, model.ErrUserExists)
		require.Equal(t, 0, env.users.insertCalls)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	login := model.LoginParams{Email: "a@x.com", Password: "abcdef"}

	t.Run("stores session matching returned refresh token", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.service.Register(context.Background(), registerParams())
		require.NoError(t, err)

		result, err := env.service.Login(context.Background(), login)
		require.NoError(t, err)
		require.NotEmpty(t, result.Session.Token)
		require.Equal(t, "Alice", result.Session.UserName)
		require.Equal(t, result.RefreshToken, env.sessions.entries[result.Session.UserID])

		claims, err := env.codec.VerifyAccessToken(result.Session.Token)
		require.NoError(t, err)
		require.Equal(t, result.Session.UserID, claims.UserID)
	})

	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.Login(context.Background(), login)
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.service.Register(context.Background(), registerParams())
		require.NoError(t, err)

		_, err = env.service.Login(context.Background(), model.LoginParams{Email: "a@x.com", Password: "wrong!"})
		require.ErrorIs(t, err, model.ErrInvalidPassword)
		require.Empty(t, env.sessions.entries)
	})

	t.Run("session store failure is internal", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.service.Register(context.Background(), registerParams())
		require.NoError(t, err)

		env.sessions.failWith = errors.New("cache unreachable")
		_, err = env.service.Login(context.Background(), login)
		require.Error(t, err)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	login := model.LoginParams{Email: "a@x.com", Password: "abcdef"}

	loggedIn := func(t *testing.T) (*testEnv, model.AuthResult) {
		t.Helper()
		env := newTestEnv()
		_, err := env.service.Register(context.Background(), registerParams())
		require.NoError(t, err)
		result, err := env.service.Login(context.Background(), login)
		require.NoError(t, err)
		return env, result
	}

	t.Run("rotation invalidates the previous token", func(t *testing.T) {
		env, first := loggedIn(t)

		second, err := env.service.Refresh(context.Background(), first.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, first.RefreshToken, second.RefreshToken)

		// The rotated-away token is now a mismatch.
		_, err = env.service.Refresh(context.Background(), first.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenMismatch)

		// The fresh one still works.
		_, err = env.service.Refresh(context.Background(), second.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("no session stored", func(t *testing.T) {
		env, result := loggedIn(t)
		delete(env.sessions.entries, result.Session.UserID)

		_, err := env.service.Refresh(context.Background(), result.RefreshToken)
		require.ErrorIs(t, err, model.ErrNoSessionStored)
	})

	t.Run("expired token clears the session slot", func(t *testing.T) {
		env, result := loggedIn(t)

		expiredCodec := token.NewCodec("access-secret", "refresh-secret", -time.Minute, -time.Minute)
		expired, err := expiredCodec.IssueRefreshToken(result.Session.UserID, "a@x.com", model.RoleUser)
		require.NoError(t, err)

		_, err = env.service.Refresh(context.Background(), expired)
		require.ErrorIs(t, err, model.ErrRefreshExpired)
		require.NotContains(t, env.sessions.entries, result.Session.UserID)

		// Retrying with the same expired token fails the same way.
		_, err = env.service.Refresh(context.Background(), expired)
		require.ErrorIs(t, err, model.ErrRefreshExpired)
	})

	t.Run("malformed token leaves the session untouched", func(t *testing.T) {
		env, result := loggedIn(t)

		_, err := env.service.Refresh(context.Background(), "garbage")
		require.ErrorIs(t, err, model.ErrInvalidRefreshToken)
		require.Contains(t, env.sessions.entries, result.Session.UserID)
	})

	t.Run("empty token", func(t *testing.T) {
		env, _ := loggedIn(t)

		_, err := env.service.Refresh(context.Background(), "")
		require.ErrorIs(t, err, model.ErrNoRefreshToken)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("deletes the session entry", func(t *testing.T) {
		env := newTestEnv()
		env.sessions.entries["user-1"] = "some-token"

		env.service.Logout(context.Background(), "user-1")
		require.Empty(t, env.sessions.entries)
	})

	t.Run("swallows cache failures", func(t *testing.T) {
		env := newTestEnv()
		env.sessions.failWith = errors.New("cache unreachable")

		env.service.Logout(context.Background(), "user-1")

		// Idempotent: repeating it changes nothing.
		env.service.Logout(context.Background(), "user-1")
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()

	t.Run("returns the record", func(t *testing.T) {
		env := newTestEnv()
		summary, err := env.service.Register(context.Background(), registerParams())
		require.NoError(t, err)

		users, err := env.service.Profile(context.Background(), model.ProfileParams{UserID: summary.ID})
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "a@x.com", users[0].Email)
	})

	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.Profile(context.Background(), model.ProfileParams{UserID: "9b9f4bb2-5b2f-4f7e-9c2c-0d3c7a1f2b4d"})
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})
}
