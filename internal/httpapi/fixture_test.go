package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alphabook/internal/audit"
	"alphabook/internal/auth"
	"alphabook/internal/config"
	"alphabook/internal/metrics"
	"alphabook/internal/orders"
	"alphabook/internal/ratelimit"
	"alphabook/internal/rbac"
	"alphabook/internal/users"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	t       *testing.T
	store   *users.MemoryStore
	audit   *audit.MemoryRepo
	codec   *auth.Codec
	gate    *auth.Gate
	metrics *metrics.Metrics
	router  *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewCodec(config.AuthConfig{
		AccessTokenSecret:  "access-secret-0123456789abcdef-0123456789",
		RefreshTokenSecret: "refresh-secret-0123456789abcdef-012345678",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	verifier := auth.NewBcryptVerifier(bcrypt.MinCost)
	hash, err := verifier.HashPassword("right")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := users.NewMemoryStore()
	store.Add(auth.UserRecord{ID: 1, Email: "admin@x.com", Name: "Admin", Role: rbac.RoleAdmin, PasswordHash: hash})
	store.Add(auth.UserRecord{ID: 2, Email: "mod@x.com", Name: "Mod", Role: rbac.RoleModerator, PasswordHash: hash})
	store.Add(auth.UserRecord{ID: 3, Email: "a@x.com", Name: "Ana", Role: rbac.RoleUser, PasswordHash: hash})

	authn, err := auth.NewAuthenticator(store, verifier, codec, ratelimit.NewMemoryLimiter(ratelimit.DefaultPolicy()), time.Second)
	if err != nil {
		t.Fatalf("authenticator: %v", err)
	}

	repo := audit.NewMemoryRepo()
	auditSvc := audit.NewService(repo)
	m := metrics.New()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	h := Handlers{
		Authn:   authn,
		Cookies: auth.NewCookiePolicy(codec, false, ""),
		Users:   users.NewService(store, auditSvc),
		Orders: orders.NewService(orders.NewMemoryRepo(orders.Order{
			ID: 1, Title: "Paper", ClientID: 10, CenterID: 20, Status: orders.StatusPending,
			Quantity: 3, UnitPriceMinor: 250, TotalPriceMinor: 750, CreatedAt: now, UpdatedAt: now,
		})),
		Audit:   auditSvc,
		Metrics: m,
	}
	gate := auth.NewGate(codec, store, time.Second)

	r := gin.New()
	r.POST("/login", h.Login)
	r.POST("/refresh", h.Refresh)
	r.POST("/logout", h.Logout)
	r.GET("/validate", RequireAccessToken(gate, m), h.Validate)
	r.GET("/orders", RequireAccessToken(gate, m), RequirePermission(rbac.PermOrdersRead, m), h.ListOrders)
	admin := r.Group("/admin", RequireFreshPrincipal(gate, m), RequirePermission(rbac.PermUsersManage, m))
	admin.PATCH("/users/:id/role", h.ChangeUserRole)
	admin.POST("/users/:id/sessions/revoke", h.RevokeUserSessions)

	return &fixture{t: t, store: store, audit: repo, codec: codec, gate: gate, metrics: m, router: r}
}

func (f *fixture) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			f.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:4000"
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// accessCookie issues an access token for the stored user id.
func (f *fixture) accessCookie(id int64) *http.Cookie {
	f.t.Helper()
	u, err := f.store.FindByID(testContext(), id)
	if err != nil {
		f.t.Fatalf("find user %d: %v", id, err)
	}
	pair, err := f.codec.IssuePair(u)
	if err != nil {
		f.t.Fatalf("issue: %v", err)
	}
	return &http.Cookie{Name: auth.AccessCookieName, Value: pair.AccessToken}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func responseCookies(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}
