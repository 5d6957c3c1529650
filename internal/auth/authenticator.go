package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alphabook/pkg/logger"
)

// Authenticator runs login and refresh. It persists nothing itself; the only
// side effect of a login attempt is one rate-limiter increment.
type Authenticator struct {
	users        UserStore
	verifier     PasswordVerifier
	codec        *Codec
	limiter      Limiter
	storeTimeout time.Duration
}

func NewAuthenticator(users UserStore, verifier PasswordVerifier, codec *Codec, limiter Limiter, storeTimeout time.Duration) (*Authenticator, error) {
	if users == nil || verifier == nil || codec == nil || limiter == nil {
		return nil, errors.New("authenticator: users, verifier, codec and limiter are required")
	}
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	return &Authenticator{
		users:        users,
		verifier:     verifier,
		codec:        codec,
		limiter:      limiter,
		storeTimeout: storeTimeout,
	}, nil
}

type LoginInput struct {
	Email    string
	Password string
	// ClientID is the coarse rate-limit key (see ratelimit.ClientID).
	ClientID string
}

// Session is the result of a successful login or refresh.
type Session struct {
	Tokens TokenPair
	User   PublicUser
}

// Login checks the rate limit before touching the credential store.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	allowed, err := a.limiter.Allow(ctx, in.ClientID)
	if err != nil {
		return Session{}, fmt.Errorf("rate limiter: %w", err)
	}
	if !allowed {
		return Session{}, ErrRateLimited
	}

	log := logger.From(ctx)

	u, err := a.findByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		if eq, ok := a.verifier.(interface{ Equalize(string) }); ok {
			eq.Equalize(in.Password)
		}
		log.Info("login rejected", "reason", "unknown_email", "client_id", in.ClientID)
		return Session{}, ErrInvalidCredentials
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("login user lookup timed out", "err", err, "client_id", in.ClientID)
		return Session{}, ErrInvalidCredentials
	case err != nil:
		return Session{}, fmt.Errorf("find user by email: %w", err)
	}

	if err := a.verifier.Verify(u.PasswordHash, in.Password); err != nil {
		log.Info("login rejected", "reason", "password_mismatch", "user_id", u.ID, "client_id", in.ClientID)
		return Session{}, ErrInvalidCredentials
	}

	return a.issue(u)
}

// Refresh exchanges a valid refresh token for a new pair built from the
// current user row, so role changes take effect here.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := a.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return Session{}, err
	}

	log := logger.From(ctx)

	u, err := a.findByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		log.Info("refresh rejected", "reason", "user_gone", "user_id", claims.UserID)
		return Session{}, ErrUserNotFound
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("refresh user lookup timed out", "err", err, "user_id", claims.UserID)
		return Session{}, fmt.Errorf("%w: user lookup timed out", ErrTokenInvalid)
	case err != nil:
		return Session{}, fmt.Errorf("find user by id: %w", err)
	}

	if claims.Version != u.TokenVersion {
		log.Info("refresh rejected", "reason", "revoked", "user_id", u.ID)
		return Session{}, fmt.Errorf("%w: token version revoked", ErrTokenInvalid)
	}

	return a.issue(u)
}

func (a *Authenticator) issue(u UserRecord) (Session, error) {
	pair, err := a.codec.IssuePair(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Tokens: pair, User: u.Public()}, nil
}

func (a *Authenticator) findByEmail(ctx context.Context, email string) (UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.storeTimeout)
	defer cancel()
	return a.users.FindByEmail(ctx, email)
}

func (a *Authenticator) findByID(ctx context.Context, id int64) (UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.storeTimeout)
	defer cancel()
	return a.users.FindByID(ctx, id)
}
