package httpapi

import (
	"errors"
	"net/http"

	"alphabook/internal/auth"
	"alphabook/internal/metrics"
	"alphabook/internal/rbac"

	"github.com/gin-gonic/gin"
)

const ginPrincipalKey = "principal"

// RequireAccessToken authenticates from the access token's claims alone.
// Every failure is a bare 401.
func RequireAccessToken(gate *auth.Gate, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := gate.Authenticate(c.Request)
		if err != nil {
			m.GateRejected(http.StatusUnauthorized)
			respondError(c, http.StatusUnauthorized, msgUnauthenticated, nil)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// RequireFreshPrincipal is the strict gate: it also re-reads the user so role
// and email are current. Use it for user management only.
func RequireFreshPrincipal(gate *auth.Gate, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := gate.AuthenticateFresh(c.Request.Context(), c.Request)
		if err != nil {
			if errors.Is(err, auth.ErrTokenInvalid) {
				m.GateRejected(http.StatusUnauthorized)
				respondError(c, http.StatusUnauthorized, msgUnauthenticated, nil)
				return
			}
			writeError(c, err)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// RequirePermission must run after one of the gates.
func RequirePermission(perm rbac.Permission, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromGin(c)
		if !ok {
			m.GateRejected(http.StatusUnauthorized)
			respondError(c, http.StatusUnauthorized, msgUnauthenticated, nil)
			return
		}
		if err := rbac.Require(p.Role, perm); err != nil {
			m.GateRejected(http.StatusForbidden)
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(ginPrincipalKey, p)
	c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
}

// PrincipalFromGin returns the principal stored by a gate middleware.
func PrincipalFromGin(c *gin.Context) (auth.Principal, bool) {
	return auth.PrincipalFrom(c.Request.Context())
}
