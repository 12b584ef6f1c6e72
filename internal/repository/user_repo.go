package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-auth-service/internal/model"
)

const uniqueViolationCode = "23505"

const userColumns = `id, name, email, password_hash, role, phone_number,
	is_active, address, created_by, modified_by, created_at, updated_at`

// UserFilter selects user records. Zero-valued fields are ignored, so an
// empty filter matches everything.
type UserFilter struct {
	ID          string
	Email       string
	PhoneNumber int64
	ActiveOnly  bool
}

// UserPatch updates user records. Nil fields are left untouched.
type UserPatch struct {
	Name       *string
	Address    *string
	IsActive   *bool
	ModifiedBy *string
}

// UserRepository is the persistence layer for user records. It exposes a
// closed verb set rather than free-form queries.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Insert(ctx context.Context, u model.User) (model.User, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, phone_number,
		                    is_active, address, created_by, modified_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.PhoneNumber,
		u.IsActive, u.Address, u.CreatedBy, u.ModifiedBy, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.User{}, model.ErrUserExists
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindMatching(ctx context.Context, f UserFilter) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	where, args := f.conditions()
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateMatching(ctx context.Context, f UserFilter, p UserPatch) (int64, error) {
	set, args := p.assignments()
	if len(set) == 0 {
		return 0, fmt.Errorf("update users: empty patch")
	}

	query := fmt.Sprintf("UPDATE users SET %s", strings.Join(set, ", "))
	where, whereArgs := f.conditionsFrom(len(args))
	args = append(args, whereArgs...)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update users: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, p UserPatch) (model.User, error) {
	set, args := p.assignments()
	if len(set) == 0 {
		return model.User{}, fmt.Errorf("update user: empty patch")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (f UserFilter) conditions() ([]string, []any) {
	return f.conditionsFrom(0)
}

// conditionsFrom numbers placeholders starting after offset existing args.
func (f UserFilter) conditionsFrom(offset int) ([]string, []any) {
	where := []string{}
	args := []any{}

	if f.ID != "" {
		args = append(args, f.ID)
		where = append(where, fmt.Sprintf("id = $%d", offset+len(args)))
	}
	if f.Email != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(f.Email)))
		where = append(where, fmt.Sprintf("lower(email) = $%d", offset+len(args)))
	}
	if f.PhoneNumber != 0 {
		args = append(args, f.PhoneNumber)
		where = append(where, fmt.Sprintf("phone_number = $%d", offset+len(args)))
	}
	if f.ActiveOnly {
		where = append(where, "is_active")
	}

	return where, args
}

func (p UserPatch) assignments() ([]string, []any) {
	set := []string{}
	args := []any{}

	if p.Name != nil {
		args = append(args, *p.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if p.Address != nil {
		args = append(args, *p.Address)
		set = append(set, fmt.Sprintf("address = $%d", len(args)))
	}
	if p.IsActive != nil {
		args = append(args, *p.IsActive)
		set = append(set, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if p.ModifiedBy != nil {
		args = append(args, *p.ModifiedBy)
		set = append(set, fmt.Sprintf("modified_by = $%d", len(args)))
	}
	if len(set) > 0 {
		args = append(args, time.Now().UTC())
		set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	}

	return set, args
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.PhoneNumber,
		&u.IsActive, &u.Address, &u.CreatedBy, &u.ModifiedBy, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
