package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/hall-booking/internal/logger"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/repository"
	"github.com/iliyamo/hall-booking/internal/utils"
)

// UserRepository is the user storage behind account management.
type UserRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	Update(ctx context.Context, id uint64, u repository.UserUpdate) error
	SetRole(ctx context.Context, id uint64, role string) error
	Delete(ctx context.Context, id uint64) error
}

// TokenRevoker ends every session of a user.
type TokenRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ProfileInput holds self-service profile changes. Nil fields are kept.
// NewPassword requires CurrentPassword.
type ProfileInput struct {
	Email           *string
	FullName        *string
	Phone           *string
	CurrentPassword *string
	NewPassword     *string
}

// UserService lets users edit their profile and administrators manage
// accounts.
type UserService struct {
	users      UserRepository
	tokens     TokenRevoker
	bcryptCost int
}

func NewUserService(users UserRepository, tokens TokenRevoker, bcryptCost int) *UserService {
	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// List returns a page of users ordered by id.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Get returns user id.
func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("get user", err)
	}
	return u, nil
}

// SetRole changes the role of user id and revokes their refresh tokens
// so the new role takes effect at the next login. Administrators cannot
// change their own role.
func (s *UserService) SetRole(ctx context.Context, actor model.Actor, id uint64, role string) (*model.User, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidArgument)
	}
	if actor.UserID == id {
		return nil, fmt.Errorf("own role: %w", ErrForbidden)
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	if err := s.users.SetRole(ctx, id, role); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
		return nil, fmt.Errorf("revoke sessions: %w", err)
	}

	logger.FromContext(ctx).Info().
		Uint64("user_id", id).
		Str("from", u.Role).
		Str("to", role).
		Uint64("actor_id", actor.UserID).
		Msg("user role changed")

	u.Role = role
	return u, nil
}

// Delete removes user id. Users with bookings or venues are refused with
// ErrConflict, and administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if actor.UserID == id {
		return fmt.Errorf("delete self: %w", ErrForbidden)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("user %d still has bookings or venues: %w", id, ErrConflict)
		}
		return wrapRepoErr("delete user", err)
	}
	logger.FromContext(ctx).Info().Uint64("user_id", id).Uint64("actor_id", actor.UserID).Msg("user deleted")
	return nil
}

// UpdateProfile applies in to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (*model.User, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := repository.UserUpdate{FullName: in.FullName, Phone: in.Phone}
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		if e == "" {
			return nil, fmt.Errorf("email must not be empty: %w", ErrInvalidArgument)
		}
		upd.Email = &e
	}
	if in.NewPassword != nil {
		if in.CurrentPassword == nil || !utils.VerifyPassword(cur.PasswordHash, *in.CurrentPassword) {
			return nil, fmt.Errorf("current password is incorrect: %w", ErrInvalidArgument)
		}
		hash, err := utils.HashPassword(*in.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}

	if err := s.users.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return nil, wrapRepoErr("update profile", err)
	}
	if upd.PasswordHash != nil {
		// a password change ends every session
		if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
			return nil, fmt.Errorf("revoke sessions: %w", err)
		}
	}
	return s.Get(ctx, id)
}
