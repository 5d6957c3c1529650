package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alphabook/internal/auth"
	"alphabook/internal/rbac"

	"github.com/gin-gonic/gin"
)

func TestRequirePermission_ForbiddenListsRequirement(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPatch, "/admin/users/3/role", map[string]string{"role": "USER"}, f.accessCookie(2))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	env := decode(t, w)
	if env.Error.Details["required_permission"] != string(rbac.PermUsersManage) || env.Error.Details["required_role"] != "ADMIN" {
		t.Fatalf("unexpected details: %+v", env.Error.Details)
	}
}

func TestRequireFreshPrincipal_UsesCurrentRole(t *testing.T) {
	f := newFixture(t)
	stale := f.accessCookie(1)

	if _, err := f.store.ChangeRole(testContext(), 1, rbac.RoleModerator, nil); err != nil {
		t.Fatalf("demote: %v", err)
	}
	w := f.do(http.MethodPost, "/admin/users/3/sessions/revoke", nil, stale)
	if w.Code != http.StatusForbidden {
		t.Fatalf("demoted admin with a stale token: expected 403, got %d", w.Code)
	}

	f.store.Delete(1)
	w = f.do(http.MethodPost, "/admin/users/3/sessions/revoke", nil, stale)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted actor: expected 401, got %d", w.Code)
	}
}

type brokenStore struct{}

func (brokenStore) FindByEmail(context.Context, string) (auth.UserRecord, error) {
	return auth.UserRecord{}, errors.New("pq: connection refused to 10.0.0.5")
}

func (brokenStore) FindByID(context.Context, int64) (auth.UserRecord, error) {
	return auth.UserRecord{}, errors.New("pq: connection refused to 10.0.0.5")
}

func TestRequireFreshPrincipal_StoreFailureIsGeneric500(t *testing.T) {
	f := newFixture(t)
	gate := auth.NewGate(f.codec, brokenStore{}, 0)

	r := gin.New()
	r.GET("/x", RequireFreshPrincipal(gate, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(f.accessCookie(1))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Fatalf("infrastructure detail leaked: %s", w.Body.String())
	}
}

func TestWriteError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
	}{
		{auth.ErrValidation, http.StatusBadRequest},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrRateLimited, http.StatusTooManyRequests},
		{auth.ErrTokenInvalid, http.StatusUnauthorized},
		{auth.ErrUserNotFound, http.StatusUnauthorized},
		{rbac.Require(rbac.RoleUser, rbac.PermReportsRead), http.StatusForbidden},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		writeError(c, tc.err)

		if w.Code != tc.status {
			t.Fatalf("%v: status %d, want %d", tc.err, w.Code, tc.status)
		}
		env := decode(t, w)
		if env.Error == nil || env.Error.Message == "" {
			t.Fatalf("%v: missing error envelope: %s", tc.err, w.Body.String())
		}
		if strings.Contains(w.Body.String(), "disk on fire") {
			t.Fatalf("internal error text leaked")
		}
	}
}
