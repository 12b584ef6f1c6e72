//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-auth-service/internal/database"
	"go-auth-service/internal/model"
	"go-auth-service/internal/repository"
)

func newUserRepo(t *testing.T) *repository.UserRepository {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is required for integration tests")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 5, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	_, err = db.Pool.Exec(ctx, `TRUNCATE users CASCADE`)
	require.NoError(t, err)

	return repository.NewUserRepository(db.Pool)
}

func seedUser(t *testing.T, repo *repository.UserRepository, email string, phone int64) model.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	u, err := repo.Insert(context.Background(), model.User{
		ID:           uuid.NewString(),
		Name:         "Alice",
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         model.RoleUser,
		PhoneNumber:  phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository_InsertAndFind(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	seeded := seedUser(t, repo, "alice@x.com", 1234567890)

	// Unique email is enforced by the database, not just the service lookup.
	_, err := repo.Insert(ctx, model.User{
		ID:           uuid.NewString(),
		Name:         "Other",
		Email:        "alice@x.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		PhoneNumber:  1234567891,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
	require.ErrorIs(t, err, model.ErrUserExists)

	// Email matching is case-insensitive.
	found, err := repo.FindMatching(ctx, repository.UserFilter{Email: "ALICE@x.com"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, seeded.ID, found[0].ID)

	byID, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", byID.Email)

	_, err = repo.FindByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	seeded := seedUser(t, repo, "bob@x.com", 2234567890)
	seedUser(t, repo, "carol@x.com", 3234567890)

	name := "Robert"
	updated, err := repo.UpdateByID(ctx, seeded.ID, repository.UserPatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Robert", updated.Name)
	require.True(t, updated.UpdatedAt.After(seeded.UpdatedAt))

	// Deactivate everyone, then confirm ActiveOnly filters them out.
	inactive := false
	affected, err := repo.UpdateMatching(ctx, repository.UserFilter{}, repository.UserPatch{IsActive: &inactive})
	require.NoError(t, err)
	require.EqualValues(t, 2, affected)

	active, err := repo.FindMatching(ctx, repository.UserFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Empty(t, active)

	_, err = repo.UpdateByID(ctx, uuid.NewString(), repository.UserPatch{Name: &name})
	require.ErrorIs(t, err, model.ErrUserNotFound)
}
