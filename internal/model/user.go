package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
const (
	RoleUser      = "USER"
	RoleHallOwner = "HALL_OWNER"
	RoleAdmin     = "ADMIN"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleHallOwner || r == RoleAdmin
}

// User represents an application user record as stored in the
// `users` table.  PasswordHash never leaves the repository layer in
// responses; handlers build their own response types.
type User struct {
	ID           uint64    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     *string   `db:"full_name"`
	Phone        *string   `db:"phone"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Actor is the identity performing an operation, resolved from the
// access token by the JWT middleware.
type Actor struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the actor holds the administrator role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
