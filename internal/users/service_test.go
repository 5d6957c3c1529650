package users

import (
	"context"
	"errors"
	"testing"

	"alphabook/internal/audit"
	"alphabook/internal/auth"
	"alphabook/internal/rbac"
)

type serviceFixture struct {
	store *MemoryStore
	audit *audit.MemoryRepo
	svc   *Service
}

func newServiceFixture() serviceFixture {
	store := NewMemoryStore()
	store.Add(auth.UserRecord{ID: 1, Email: "admin@x.com", Role: rbac.RoleAdmin})
	store.Add(auth.UserRecord{ID: 2, Email: "mod@x.com", Role: rbac.RoleModerator})
	store.Add(auth.UserRecord{ID: 3, Email: "user@x.com", Role: rbac.RoleUser})
	store.Add(auth.UserRecord{ID: 4, Email: "admin2@x.com", Role: rbac.RoleAdmin})

	repo := audit.NewMemoryRepo()
	return serviceFixture{store: store, audit: repo, svc: NewService(store, audit.NewService(repo))}
}

func principal(id int64, role rbac.Role) auth.Principal {
	return auth.Principal{UserID: id, Role: role}
}

func TestChangeRole_AdminPromotesUser(t *testing.T) {
	f := newServiceFixture()

	u, err := f.svc.ChangeRole(context.Background(), principal(1, rbac.RoleAdmin), 3, rbac.RoleModerator, "10.0.0.1")
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if u.Role != rbac.RoleModerator {
		t.Fatalf("expected MODERATOR, got %q", u.Role)
	}
	stored, _ := f.store.FindByID(context.Background(), 3)
	if stored.TokenVersion != 0 {
		t.Fatalf("role change must not revoke sessions")
	}
	if len(f.audit.OfType(audit.EventRoleChanged)) != 1 {
		t.Fatalf("expected role_changed audit event")
	}
}

func TestChangeRole_Denied(t *testing.T) {
	cases := []struct {
		name   string
		actor  auth.Principal
		target int64
		role   rbac.Role
	}{
		{"admin cannot demote admin", principal(1, rbac.RoleAdmin), 4, rbac.RoleUser},
		{"admin cannot grant admin", principal(1, rbac.RoleAdmin), 3, rbac.RoleAdmin},
		{"moderator lacks users:manage", principal(2, rbac.RoleModerator), 3, rbac.RoleUser},
		{"user lacks users:manage", principal(3, rbac.RoleUser), 3, rbac.RoleModerator},
		{"admin cannot change self", principal(1, rbac.RoleAdmin), 1, rbac.RoleModerator},
	}
	for _, tc := range cases {
		f := newServiceFixture()
		_, err := f.svc.ChangeRole(context.Background(), tc.actor, tc.target, tc.role, "")
		if !errors.Is(err, rbac.ErrInsufficientPermission) {
			t.Fatalf("%s: expected ErrInsufficientPermission, got %v", tc.name, err)
		}
		if len(f.audit.Events()) != 0 {
			t.Fatalf("%s: denied change must not be audited as applied", tc.name)
		}
	}
}

func TestChangeRole_ValidationAndMissingTarget(t *testing.T) {
	f := newServiceFixture()
	if _, err := f.svc.ChangeRole(context.Background(), principal(1, rbac.RoleAdmin), 3, "ROOT", ""); !errors.Is(err, auth.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.ChangeRole(context.Background(), principal(1, rbac.RoleAdmin), 99, rbac.RoleUser, ""); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRevokeSessions_BumpsVersion(t *testing.T) {
	f := newServiceFixture()

	if err := f.svc.RevokeSessions(context.Background(), principal(1, rbac.RoleAdmin), 2, "10.0.0.1"); err != nil {
		t.Fatalf("RevokeSessions: %v", err)
	}
	u, _ := f.store.FindByID(context.Background(), 2)
	if u.TokenVersion != 1 {
		t.Fatalf("expected version 1, got %d", u.TokenVersion)
	}
	if len(f.audit.OfType(audit.EventSessionsRevoked)) != 1 {
		t.Fatalf("expected sessions_revoked audit event")
	}

	if err := f.svc.RevokeSessions(context.Background(), principal(1, rbac.RoleAdmin), 4, ""); !errors.Is(err, rbac.ErrInsufficientPermission) {
		t.Fatalf("admin must not revoke a peer admin: %v", err)
	}
}

func TestMemoryStore_EmailLookupIgnoresCase(t *testing.T) {
	s := NewMemoryStore()
	added := s.Add(auth.UserRecord{Email: "Ana@X.com", Role: rbac.RoleUser})
	if added.ID != 1 {
		t.Fatalf("expected generated id 1, got %d", added.ID)
	}
	u, err := s.FindByEmail(context.Background(), "ana@x.com")
	if err != nil || u.ID != 1 {
		t.Fatalf("lookup failed: %+v %v", u, err)
	}
	s.Delete(1)
	if _, err := s.FindByEmail(context.Background(), "ana@x.com"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}
