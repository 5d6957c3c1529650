package auth

import (
	"context"

	"alphabook/internal/rbac"
)

// Principal is a trusted identity. It is only built from a verified access
// token or from a fresh user row, never from DecodeUnsafe output.
type Principal struct {
	UserID int64     `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   rbac.Role `json:"role"`
}

func (p Principal) Can(perm rbac.Permission) bool { return rbac.HasPermission(p.Role, perm) }

func principalFromClaims(c AccessClaims) Principal {
	return Principal{UserID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}

func principalFromUser(u UserRecord) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

type ctxKey int

const ctxPrincipal ctxKey = iota

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, false
	}
	return p, true
}
