package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/utils"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// NewUser holds the registration fields accepted by Create.
type NewUser struct {
	Email    string
	Password string
	FullName *string
	Phone    *string
	Role     string
}

const userColumns = `id, email, password_hash, full_name, phone, role, is_active, created_at, updated_at`

// Create hashes the password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u NewUser, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(u.Password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone, role) VALUES (?,?,?,?,?)",
		email, hash, u.FullName, u.Phone, u.Role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns users ordered by id.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	out := []model.User{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	return out, err
}

// UserUpdate holds profile changes. Nil fields keep their current value.
// PasswordHash must already be hashed.
type UserUpdate struct {
	Email        *string
	FullName     *string
	Phone        *string
	PasswordHash *string
}

// Update applies the non-nil fields of u to user id. MySQL reports zero
// affected rows for a no-op update, so callers check existence first.
func (r *UserRepo) Update(ctx context.Context, id uint64, u UserUpdate) error {
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
	}
	_, err := r.db.ExecContext(ctx, `UPDATE users
	      SET email = COALESCE(?, email), full_name = COALESCE(?, full_name), phone = COALESCE(?, phone),
	          password_hash = COALESCE(?, password_hash), updated_at = ?
	      WHERE id = ?`,
		u.Email, u.FullName, u.Phone, u.PasswordHash, time.Now().UTC(), id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// SetRole changes the role of user id. Like Update it does not report
// missing users.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET role = ?, updated_at = ? WHERE id = ?", role, time.Now().UTC(), id)
	return err
}

// Delete removes a user together with their refresh tokens. Users that
// still have bookings or own venues are kept and ErrConflict is returned.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	if err := tx.GetContext(ctx, &locked, "SELECT id FROM users WHERE id = ? FOR UPDATE", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lock user: %w", err)
	}

	var refs int
	if err := tx.GetContext(ctx, &refs, `SELECT
	      (SELECT COUNT(*) FROM bookings WHERE user_id = ?) + (SELECT COUNT(*) FROM venues WHERE owner_id = ?)`,
		id, id); err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if refs > 0 {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id = ?", id); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
