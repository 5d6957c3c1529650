package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"alphabook/internal/audit"
	"alphabook/internal/auth"
	"alphabook/internal/metrics"
	"alphabook/internal/orders"
	"alphabook/internal/ratelimit"
	"alphabook/internal/rbac"
	"alphabook/internal/users"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Authn   *auth.Authenticator
	Cookies auth.CookiePolicy
	Users   *users.Service
	Orders  *orders.Service
	Audit   *audit.Service
	Metrics *metrics.Metrics

	// Ready reports whether backing stores are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

// --- Health ---

func (h Handlers) Health(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         auth.PublicUser `json:"user"`
}

func newSessionResponse(s auth.Session) sessionResponse {
	return sessionResponse{AccessToken: s.Tokens.AccessToken, RefreshToken: s.Tokens.RefreshToken, User: s.User}
}

// Login checks credentials and sets both session cookies. The tokens are
// also returned in the body for non-browser clients.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	clientID := ratelimit.ClientID(c.Request)

	s, err := h.Authn.Login(ctx, auth.LoginInput{Email: req.Email, Password: req.Password, ClientID: clientID})
	switch {
	case err == nil:
		h.Metrics.LoginAttempt(metrics.OutcomeSuccess)
		h.Audit.LoginSucceeded(ctx, s.User.ID, s.User.Role.String(), clientID)
	case errors.Is(err, auth.ErrRateLimited):
		h.Metrics.LoginAttempt(metrics.OutcomeRateLimited)
		h.Audit.LoginRateLimited(ctx, clientID)
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.Metrics.LoginAttempt(metrics.OutcomeInvalid)
		h.Audit.LoginFailed(ctx, clientID)
	case errors.Is(err, auth.ErrValidation):
		h.Metrics.LoginAttempt(metrics.OutcomeRejected)
	default:
		h.Metrics.LoginAttempt(metrics.OutcomeError)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	auth.SetCookies(c.Writer, h.Cookies.SessionCookies(s.Tokens))
	respondOK(c, newSessionResponse(s))
}

// Refresh rotates the pair using the refresh token cookie.
func (h Handlers) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	s, err := h.Authn.Refresh(ctx, auth.RefreshTokenFromRequest(c.Request))
	switch {
	case err == nil:
		h.Metrics.TokenRefresh(metrics.OutcomeSuccess)
		h.Audit.TokenRefreshed(ctx, s.User.ID, ratelimit.ClientID(c.Request))
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrUserNotFound):
		h.Metrics.TokenRefresh(metrics.OutcomeRejected)
	default:
		h.Metrics.TokenRefresh(metrics.OutcomeError)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	auth.SetCookies(c.Writer, h.Cookies.SessionCookies(s.Tokens))
	respondOK(c, newSessionResponse(s))
}

// Logout always succeeds and clears both cookies.
func (h Handlers) Logout(c *gin.Context) {
	auth.SetCookies(c.Writer, h.Cookies.ClearCookies())
	respondOK(c, gin.H{"message": "logged out"})
}

// Validate reports the principal of the presented access token.
// Requires RequireAccessToken.
func (h Handlers) Validate(c *gin.Context) {
	p, ok := PrincipalFromGin(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, msgUnauthenticated, nil)
		return
	}
	respondOK(c, gin.H{"user": p.Public()})
}

// --- Orders ---

// ListOrders returns orders with fields filtered by the caller's role.
// Requires RequireAccessToken and orders:read.
func (h Handlers) ListOrders(c *gin.Context) {
	p, ok := PrincipalFromGin(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, msgUnauthenticated, nil)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation failed", gin.H{"limit": "must be an integer"})
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation failed", gin.H{"offset": "must be an integer"})
		return
	}

	list, err := h.Orders.ListVisible(c.Request.Context(), p.Role, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, gin.H{
		"orders": list,
		"fields": rbac.FieldSelection(p.Role, rbac.ResourceOrders).Fields(),
	})
}

// --- Admin ---

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeUserRole requires RequireFreshPrincipal and users:manage.
func (h Handlers) ChangeUserRole(c *gin.Context) {
	p, targetID, ok := h.adminTarget(c)
	if !ok {
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation failed", gin.H{"role": "must be one of USER, MODERATOR, ADMIN"})
		return
	}

	u, err := h.Users.ChangeRole(c.Request.Context(), p, targetID, role, ratelimit.ClientID(c.Request))
	if err != nil {
		writeAdminError(c, err)
		return
	}
	respondOK(c, gin.H{"user": u})
}

// RevokeUserSessions requires RequireFreshPrincipal and users:manage.
func (h Handlers) RevokeUserSessions(c *gin.Context) {
	p, targetID, ok := h.adminTarget(c)
	if !ok {
		return
	}
	if err := h.Users.RevokeSessions(c.Request.Context(), p, targetID, ratelimit.ClientID(c.Request)); err != nil {
		writeAdminError(c, err)
		return
	}
	respondOK(c, gin.H{"revoked": true})
}

func (h Handlers) adminTarget(c *gin.Context) (auth.Principal, int64, bool) {
	p, ok := PrincipalFromGin(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, msgUnauthenticated, nil)
		return auth.Principal{}, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation failed", gin.H{"id": "must be a positive integer"})
		return auth.Principal{}, 0, false
	}
	return p, id, true
}

// writeAdminError differs from writeError only in that a missing target is
// a 404: the caller is authenticated, so the target's absence is not a secret.
func writeAdminError(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrUserNotFound) {
		respondError(c, http.StatusNotFound, "user not found", nil)
		return
	}
	writeError(c, err)
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
