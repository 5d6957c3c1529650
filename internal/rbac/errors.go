package rbac

import (
	"errors"
	"fmt"
)

var ErrInsufficientPermission = errors.New("rbac: insufficient permission")

// PermissionError describes a denied operation. Either Permission or Target is set.
// The caller is already authenticated, so the requirement is safe to expose.
type PermissionError struct {
	Role       Role
	Permission Permission
	Target     Role
}

func (e *PermissionError) Error() string {
	if e.Permission != "" {
		return fmt.Sprintf("rbac: role %s lacks permission %s", e.Role, e.Permission)
	}
	return fmt.Sprintf("rbac: role %s cannot manage role %s", e.Role, e.Target)
}

func (e *PermissionError) Unwrap() error { return ErrInsufficientPermission }

// Details is the client-facing description of what was required.
func (e *PermissionError) Details() map[string]any {
	d := map[string]any{"role": e.Role}
	if e.Permission != "" {
		d["required_permission"] = e.Permission
		if lowest := MinimumRole(e.Permission); lowest != "" {
			d["required_role"] = lowest
		}
		return d
	}
	d["target_role"] = e.Target
	d["required"] = fmt.Sprintf("a role above %s", e.Target)
	return d
}

// Require returns a *PermissionError if role does not hold perm.
func Require(role Role, perm Permission) error {
	if HasPermission(role, perm) {
		return nil
	}
	return &PermissionError{Role: role, Permission: perm}
}

// RequireManage returns a *PermissionError unless actor can manage target.
func RequireManage(actor, target Role) error {
	if CanManageRole(actor, target) {
		return nil
	}
	return &PermissionError{Role: actor, Target: target}
}
