package main

import (
	"context"
	"fmt"
	"log/slog"

	"alphabook/internal/audit"
	"alphabook/internal/auth"
	"alphabook/internal/config"
	"alphabook/internal/httpapi"
	"alphabook/internal/metrics"
	"alphabook/internal/orders"
	"alphabook/internal/ratelimit"
	"alphabook/internal/rbac"
	"alphabook/internal/users"
	"alphabook/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// deps are the storage-facing collaborators; main passes Postgres-backed
// ones, tests pass in-memory ones.
type deps struct {
	cfg       config.Config
	log       *slog.Logger
	users     users.Store
	orders    orders.Repository
	auditRepo audit.Repository
	limiter   ratelimit.Limiter
	ready     func(ctx context.Context) error

	// bcryptCost overrides bcrypt.DefaultCost; tests lower it.
	bcryptCost int
}

// buildRouter assembles services and the gin engine. A bad token
// configuration fails here, before the server starts listening.
func buildRouter(d deps) (*gin.Engine, error) {
	codec, err := auth.NewCodec(d.cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	cost := d.bcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	authn, err := auth.NewAuthenticator(d.users, auth.NewBcryptVerifier(cost), codec, d.limiter, d.cfg.Auth.StoreTimeout)
	if err != nil {
		return nil, err
	}

	auditSvc := audit.NewService(d.auditRepo)
	m := metrics.New()
	gate := auth.NewGate(codec, d.users, d.cfg.Auth.StoreTimeout)

	h := httpapi.Handlers{
		Authn:   authn,
		Cookies: auth.NewCookiePolicy(codec, d.cfg.Auth.SecureCookies, d.cfg.Auth.CookieDomain),
		Users:   users.NewService(d.users, auditSvc),
		Orders:  orders.NewService(d.orders),
		Audit:   auditSvc,
		Metrics: m,
		Ready:   d.ready,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(d.log))
	r.Use(m.Middleware())
	r.Use(httpapi.CORS(d.cfg.CORS.AllowedOrigins))

	registerRoutes(r, h, gate, m)
	return r, nil
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, gate *auth.Gate, m *metrics.Metrics) {
	// public
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/v1")

	// AUTH routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/validate", httpapi.RequireAccessToken(gate, m), h.Validate)
	}

	// ORDERS routes (claims-only gate)
	ordersGroup := v1.Group("/orders")
	ordersGroup.Use(httpapi.RequireAccessToken(gate, m))
	{
		ordersGroup.GET("", httpapi.RequirePermission(rbac.PermOrdersRead, m), h.ListOrders)
	}

	// ADMIN routes
	// The strict gate re-reads the actor so a just-demoted admin cannot act on a stale token.
	admin := v1.Group("/admin")
	admin.Use(httpapi.RequireFreshPrincipal(gate, m))
	admin.Use(httpapi.RequirePermission(rbac.PermUsersManage, m))
	{
		admin.PATCH("/users/:id/role", h.ChangeUserRole)
		admin.POST("/users/:id/sessions/revoke", h.RevokeUserSessions)
	}
}
