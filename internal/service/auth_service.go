package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-auth-service/internal/model"
	"go-auth-service/internal/repository"
	"go-auth-service/internal/token"
	"go-auth-service/pkg/apierror"
)

// Store contracts are declared on the consumer side so flows can run against
// in-memory fakes in tests.
type userStore interface {
	Insert(ctx context.Context, u model.User) (model.User, error)
	FindMatching(ctx context.Context, f repository.UserFilter) ([]model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
}

type sessionStore interface {
	Put(ctx context.Context, userID string, refreshToken string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type credentialHasher interface {
	Hash(plain string) (string, error)
	Compare(plain string, hash string) bool
}

// AuthService orchestrates the register/login/refresh/profile/logout flows.
// It holds no mutable state of its own; the stores it delegates to are safe
// for concurrent use.
type AuthService struct {
	users    userStore
	sessions sessionStore
	hasher   credentialHasher
	codec    *token.Codec
}

func NewAuthService(users userStore, sessions sessionStore, hasher credentialHasher, codec *token.Codec) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		codec:    codec,
	}
}

func (s *AuthService) Register(ctx context.Context, p model.RegisterParams) (model.UserSummary, error) {
	if err := p.Validate(); err != nil {
		return model.UserSummary{}, apierror.BadRequest(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(p.Email))
	existing, err := s.users.FindMatching(ctx, repository.UserFilter{Email: email})
	if err != nil {
		return model.UserSummary{}, fmt.Errorf("check existing user: %w", err)
	}
	if len(existing) > 0 {
		return model.UserSummary{}, model.ErrUserExists
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return model.UserSummary{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(p.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         p.Role,
		PhoneNumber:  p.PhoneNumber,
		IsActive:     true,
		Address:      strings.TrimSpace(p.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Insert(ctx, user)
	if err != nil {
		// A concurrent registration can still hit the unique constraint
		// after the lookup above came back empty.
		if errors.Is(err, model.ErrUserExists) {
			return model.UserSummary{}, model.ErrUserExists
		}
		return model.UserSummary{}, fmt.Errorf("insert user: %w", err)
	}

	return model.UserSummary{ID: created.ID, Name: created.Name, Email: created.Email, Role: created.Role}, nil
}

func (s *AuthService) Login(ctx context.Context, p model.LoginParams) (model.AuthResult, error) {
	if err := p.Validate(); err != nil {
		return model.AuthResult{}, apierror.BadRequest(err.Error())
	}

	users, err := s.users.FindMatching(ctx, repository.UserFilter{Email: p.Email})
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("find user by email: %w", err)
	}
	if len(users) == 0 {
		return model.AuthResult{}, model.ErrUserNotFound
	}
	user := users[0]

	if !s.hasher.Compare(p.Password, user.PasswordHash) {
		return model.AuthResult{}, model.ErrInvalidPassword
	}

	return s.issueSession(ctx, user)
}

// Refresh rotates the token pair. The presented refresh token must verify
// and match the session store byte for byte; an expired one clears its
// session slot so a later retry fails the same way.
func (s *AuthService) Refresh(ctx context.Context, presented string) (model.AuthResult, error) {
	if presented == "" {
		return model.AuthResult{}, model.ErrNoRefreshToken
	}

	claims, err := s.codec.VerifyRefreshToken(presented)
	switch {
	case err == nil:
	case errors.Is(err, token.ErrExpired):
		// The signature checked out, so the embedded identity is trusted
		// enough to clear its session slot.
		if delErr := s.sessions.Delete(ctx, claims.UserID); delErr != nil {
			slog.Warn("failed to clear session for expired refresh token",
				"user_id", claims.UserID, "error", delErr)
		}
		return model.AuthResult{}, model.ErrRefreshExpired
	default:
		// Malformed or wrong signature: identity untrusted, session untouched.
		return model.AuthResult{}, model.ErrInvalidRefreshToken
	}

	stored, err := s.sessions.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNoSessionStored) {
			return model.AuthResult{}, model.ErrNoSessionStored
		}
		return model.AuthResult{}, fmt.Errorf("load session: %w", err)
	}
	if stored != presented {
		// Possible replay of a rotated-away token.
		return model.AuthResult{}, model.ErrTokenMismatch
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.AuthResult{}, model.ErrUserNotFound
		}
		return model.AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	return s.issueSession(ctx, user)
}

func (s *AuthService) Profile(ctx context.Context, p model.ProfileParams) ([]model.User, error) {
	if err := p.Validate(); err != nil {
		return nil, apierror.BadRequest(err.Error())
	}

	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return []model.User{user}, nil
}

// Logout clears the server-side session slot. Cache failures are logged and
// swallowed: logout is client-state cleanup first, and must always succeed
// from the client's point of view.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		slog.Warn("failed to delete session entry on logout", "user_id", userID, "error", err)
	}
}

// issueSession mints a fresh token pair and overwrites the session slot,
// which invalidates whatever refresh token was live before. Writing the slot
// is the commit point of both login and refresh.
func (s *AuthService) issueSession(ctx context.Context, user model.User) (model.AuthResult, error) {
	access, err := s.codec.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.codec.IssueRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.sessions.Put(ctx, user.ID, refresh, s.codec.RefreshTTL()); err != nil {
		return model.AuthResult{}, fmt.Errorf("store session: %w", err)
	}

	return model.AuthResult{
		Session: model.SessionData{
			Token:    access,
			UserID:   user.ID,
			UserName: user.Name,
			Role:     user.Role,
			Email:    user.Email,
		},
		RefreshToken: refresh,
		RefreshTTL:   s.codec.RefreshTTL(),
	}, nil
}
