package auth

import (
	"errors"
	"fmt"
	"time"

	"alphabook/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Codec signs and verifies access and refresh tokens.
// Each kind has its own HS256 secret and lifetime.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

// NewCodec fails when a secret is missing, shorter than config.MinSecretLength,
// or shared between the two token kinds. There is no fallback secret.
func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if err := checkSecret("access", cfg.AccessTokenSecret); err != nil {
		return nil, err
	}
	if err := checkSecret("refresh", cfg.RefreshTokenSecret); err != nil {
		return nil, err
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	return &Codec{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		clock:         time.Now,
	}, nil
}

func checkSecret(kind, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s token secret is required", kind)
	}
	if len(secret) < config.MinSecretLength {
		return fmt.Errorf("%s token secret must be at least %d bytes", kind, config.MinSecretLength)
	}
	return nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

/* ===================== ISSUE TOKENS ===================== */

// IssuePair mints an access and a refresh token for u at the same instant.
func (c *Codec) IssuePair(u UserRecord) (TokenPair, error) {
	access, accessExp, err := c.IssueAccess(AccessClaims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
	})
	if err != nil {
		return TokenPair{}, err
	}

	refresh, refreshExp, err := c.IssueRefresh(RefreshClaims{
		UserID:  u.ID,
		Version: u.TokenVersion,
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess signs claims with the access secret; registered claims are overwritten.
func (c *Codec) IssueAccess(claims AccessClaims) (string, time.Time, error) {
	claims.TokenKind = TokenKindAccess
	claims.RegisteredClaims = c.registered(c.accessTTL)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return tok, claims.ExpiresAt.Time, nil
}

// IssueRefresh signs claims with the refresh secret; registered claims are overwritten.
func (c *Codec) IssueRefresh(claims RefreshClaims) (string, time.Time, error) {
	claims.TokenKind = TokenKindRefresh
	claims.RegisteredClaims = c.registered(c.refreshTTL)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return tok, claims.ExpiresAt.Time, nil
}

func (c *Codec) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := c.clock()
	return jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Audience:  audienceOrNil(c.audience),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

/* ===================== VERIFY TOKENS ===================== */

// VerifyAccess returns the claims of a valid access token.
// Every failure wraps ErrTokenInvalid; callers must not distinguish causes.
func (c *Codec) VerifyAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := c.verify(token, c.accessSecret, &claims); err != nil {
		return AccessClaims{}, err
	}
	if claims.TokenKind != TokenKindAccess {
		return AccessClaims{}, fmt.Errorf("%w: token_type mismatch", ErrTokenInvalid)
	}
	if claims.UserID <= 0 {
		return AccessClaims{}, fmt.Errorf("%w: user_id missing", ErrTokenInvalid)
	}
	if !claims.Role.Valid() {
		return AccessClaims{}, fmt.Errorf("%w: role missing or unknown", ErrTokenInvalid)
	}
	return claims, nil
}

// VerifyRefresh returns the claims of a valid refresh token.
func (c *Codec) VerifyRefresh(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := c.verify(token, c.refreshSecret, &claims); err != nil {
		return RefreshClaims{}, err
	}
	if claims.TokenKind != TokenKindRefresh {
		return RefreshClaims{}, fmt.Errorf("%w: token_type mismatch", ErrTokenInvalid)
	}
	if claims.UserID <= 0 {
		return RefreshClaims{}, fmt.Errorf("%w: user_id missing", ErrTokenInvalid)
	}
	return claims, nil
}

// verify checks signature, exp and iat with zero leeway: a token whose exp equals now is expired.
func (c *Codec) verify(token string, secret []byte, claims jwt.Claims) error {
	if token == "" {
		return fmt.Errorf("%w: missing", ErrTokenInvalid)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.clock),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return nil
}

/* ===================== DECODE (UNVERIFIED) ===================== */

// DecodeUnsafe parses the payload of either token kind WITHOUT checking the signature.
// Never use the result for a trust decision.
func DecodeUnsafe(token string) (DisplayClaims, bool) {
	if token == "" {
		return DisplayClaims{}, false
	}
	var claims unverifiedClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return DisplayClaims{}, false
	}
	out := DisplayClaims{
		Kind:   claims.TokenKind,
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, true
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
