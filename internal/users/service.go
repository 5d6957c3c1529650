package users

import (
	"context"
	"errors"
	"fmt"

	"alphabook/internal/audit"
	"alphabook/internal/auth"
	"alphabook/internal/rbac"
	"alphabook/pkg/logger"
)

// Service performs user management on behalf of an authenticated actor.
// Callers must pass a Principal from the strict (fresh) gate.
type Service struct {
	store Store
	audit *audit.Service
}

func NewService(store Store, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc}
}

// ChangeRole moves target to role. The actor needs users:manage and must
// outrank both the target's current role and the new one.
func (s *Service) ChangeRole(ctx context.Context, actor auth.Principal, targetID int64, role rbac.Role, ip string) (auth.PublicUser, error) {
	if !role.Valid() {
		return auth.PublicUser{}, fmt.Errorf("%w: unknown role %q", auth.ErrValidation, role)
	}
	if err := rbac.Require(actor.Role, rbac.PermUsersManage); err != nil {
		return auth.PublicUser{}, err
	}

	var from rbac.Role
	u, err := s.store.ChangeRole(ctx, targetID, role, func(current rbac.Role) error {
		from = current
		if err := rbac.RequireManage(actor.Role, current); err != nil {
			return err
		}
		return rbac.RequireManage(actor.Role, role)
	})
	if err != nil {
		return auth.PublicUser{}, s.wrap(err, "change role")
	}

	logger.From(ctx).Info("user role changed",
		"actor_id", actor.UserID, "target_id", u.ID, "from", from, "to", u.Role)
	s.audit.RoleChanged(ctx, actor.UserID, actor.Role.String(), u.ID, from.String(), u.Role.String(), ip)
	return u.Public(), nil
}

// RevokeSessions invalidates all refresh tokens of target. Access tokens
// already issued stay valid until they expire.
func (s *Service) RevokeSessions(ctx context.Context, actor auth.Principal, targetID int64, ip string) error {
	if err := rbac.Require(actor.Role, rbac.PermUsersManage); err != nil {
		return err
	}
	u, err := s.store.BumpTokenVersion(ctx, targetID, func(current rbac.Role) error {
		return rbac.RequireManage(actor.Role, current)
	})
	if err != nil {
		return s.wrap(err, "revoke sessions")
	}

	logger.From(ctx).Info("user sessions revoked", "actor_id", actor.UserID, "target_id", u.ID)
	s.audit.SessionsRevoked(ctx, actor.UserID, actor.Role.String(), u.ID, ip)
	return nil
}

func (s *Service) wrap(err error, op string) error {
	var perr *rbac.PermissionError
	if errors.As(err, &perr) || errors.Is(err, auth.ErrUserNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
