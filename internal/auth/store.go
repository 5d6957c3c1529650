package auth

import (
	"context"
	"time"

	"alphabook/internal/rbac"
)

// UserRecord is a stored account as seen by the auth core.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	Role         rbac.Role
	PasswordHash string
	// TokenVersion is embedded in refresh tokens; bumping it revokes them all.
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the sanitized user returned to clients. It never carries the hash.
type PublicUser struct {
	ID    int64     `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  rbac.Role `json:"role"`
}

func (u UserRecord) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (p Principal) Public() PublicUser {
	return PublicUser{ID: p.UserID, Email: p.Email, Name: p.Name, Role: p.Role}
}

// UserStore is the credential store adapter. Implementations return
// ErrUserNotFound when no row matches.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	FindByID(ctx context.Context, id int64) (UserRecord, error)
}

// Limiter bounds login attempts per client identifier.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
