// Package users is the credential store behind the auth core plus the
// administrative operations that mutate user roles and sessions.
package users

import (
	"context"

	"alphabook/internal/auth"
	"alphabook/internal/rbac"
)

// AuthorizeFunc inspects the target's current role inside the mutation
// and aborts it by returning an error.
type AuthorizeFunc func(current rbac.Role) error

// Store is auth.UserStore plus the admin mutations.
type Store interface {
	auth.UserStore

	// ChangeRole sets the role of user id after authorize approves the current one.
	ChangeRole(ctx context.Context, id int64, role rbac.Role, authorize AuthorizeFunc) (auth.UserRecord, error)
	// BumpTokenVersion invalidates every outstanding refresh token of user id.
	BumpTokenVersion(ctx context.Context, id int64, authorize AuthorizeFunc) (auth.UserRecord, error)
}
