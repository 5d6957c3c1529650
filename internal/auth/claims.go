package auth

import (
	"time"

	"alphabook/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// AccessClaims are carried by short-lived access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      rbac.Role `json:"role"`
	TokenKind TokenKind `json:"token_type"`
}

// RefreshClaims carry no email or role, so every refresh re-reads the user.
// Version must match the user's token_version at refresh time.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID    int64     `json:"user_id"`
	Version   int       `json:"ver"`
	TokenKind TokenKind `json:"token_type"`
}

// DisplayClaims are decoded WITHOUT signature verification.
// They are for display only (e.g. showing when a session expires); there is
// no conversion from DisplayClaims to Principal.
type DisplayClaims struct {
	Kind      TokenKind
	UserID    int64
	Email     string
	Name      string
	Role      rbac.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// unverifiedClaims is the superset shape used by DecodeUnsafe.
type unverifiedClaims struct {
	jwt.RegisteredClaims

	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      rbac.Role `json:"role"`
	TokenKind TokenKind `json:"token_type"`
}
