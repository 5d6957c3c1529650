package rbac

import (
	"fmt"
	"strings"
)

// Role names. Keep these stable; they are stored in users.role and signed into access tokens.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

var roleLevels = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// Level returns the privilege level of r. Unknown roles are level 0.
func (r Role) Level() int { return roleLevels[r] }

func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

func (r Role) String() string { return string(r) }

// Roles returns every known role, lowest privilege first.
func Roles() []Role { return []Role{RoleUser, RoleModerator, RoleAdmin} }

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// CanManageRole reports whether an actor holding actor may act on an account holding target.
// Management is strictly downward: equal roles cannot manage each other.
func CanManageRole(actor, target Role) bool {
	return actor.Level() > target.Level()
}

func IsAdmin(r Role) bool { return r == RoleAdmin }
