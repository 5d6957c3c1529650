package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"alphabook/pkg/logger"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Gate turns an incoming request into a trusted Principal.
// It does not perform RBAC checks; those belong to the calling endpoint.
type Gate struct {
	codec        *Codec
	users        UserStore
	storeTimeout time.Duration
}

func NewGate(codec *Codec, users UserStore, storeTimeout time.Duration) *Gate {
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	return &Gate{codec: codec, users: users, storeTimeout: storeTimeout}
}

// Authenticate verifies the access token and builds the Principal from its
// claims alone. No storage round trip happens on this path.
func (g *Gate) Authenticate(r *http.Request) (Principal, error) {
	claims, err := g.codec.VerifyAccess(TokenFromRequest(r))
	if err != nil {
		return Principal{}, err
	}
	return principalFromClaims(claims), nil
}

// AuthenticateFresh additionally re-reads the user so role and email are current.
// A deleted user, or a lookup that times out, is reported as ErrTokenInvalid.
func (g *Gate) AuthenticateFresh(ctx context.Context, r *http.Request) (Principal, error) {
	p, err := g.Authenticate(r)
	if err != nil {
		return Principal{}, err
	}
	if g.users == nil {
		return Principal{}, errors.New("gate: user store not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()

	u, err := g.users.FindByID(ctx, p.UserID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return Principal{}, fmt.Errorf("%w: user no longer exists", ErrTokenInvalid)
	case errors.Is(err, context.DeadlineExceeded):
		logger.From(ctx).Error("fresh principal lookup timed out", "err", err, "user_id", p.UserID)
		return Principal{}, fmt.Errorf("%w: user lookup timed out", ErrTokenInvalid)
	case err != nil:
		return Principal{}, fmt.Errorf("find user by id: %w", err)
	}
	return principalFromUser(u), nil
}

// TokenFromRequest reads the access token cookie, falling back to an
// Authorization bearer value for non-browser callers.
func TokenFromRequest(r *http.Request) string {
	if ck, err := r.Cookie(AccessCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	raw := strings.TrimSpace(r.Header.Get(authorizationHeader))
	if len(raw) < len(bearerPrefix) || !strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(raw[len(bearerPrefix):])
}

// RefreshTokenFromRequest reads the refresh token cookie only.
func RefreshTokenFromRequest(r *http.Request) string {
	ck, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}
