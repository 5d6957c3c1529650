package rbac

import "sort"

// Permission is an atomic capability checked by protected operations.
type Permission string

const (
	PermUsersRead   Permission = "users:read"
	PermUsersManage Permission = "users:manage"

	PermClientsRead  Permission = "clients:read"
	PermClientsWrite Permission = "clients:write"

	PermCentersRead  Permission = "centers:read"
	PermCentersWrite Permission = "centers:write"

	PermBudgetsRead    Permission = "budgets:read"
	PermBudgetsWrite   Permission = "budgets:write"
	PermBudgetsApprove Permission = "budgets:approve"

	PermOrdersRead    Permission = "orders:read"
	PermOrdersWrite   Permission = "orders:write"
	PermOrdersApprove Permission = "orders:approve"

	PermReportsRead     Permission = "reports:read"
	PermContentModerate Permission = "content:moderate"
	PermSettingsManage  Permission = "settings:manage"
)

var allPermissions = []Permission{
	PermUsersRead,
	PermUsersManage,
	PermClientsRead,
	PermClientsWrite,
	PermCentersRead,
	PermCentersWrite,
	PermBudgetsRead,
	PermBudgetsWrite,
	PermBudgetsApprove,
	PermOrdersRead,
	PermOrdersWrite,
	PermOrdersApprove,
	PermReportsRead,
	PermContentModerate,
	PermSettingsManage,
}

var userPermissions = []Permission{
	PermClientsRead,
	PermCentersRead,
	PermBudgetsRead,
	PermOrdersRead,
	PermOrdersWrite,
}

var moderatorPermissions = append(append([]Permission{}, userPermissions...),
	PermUsersRead,
	PermClientsWrite,
	PermCentersWrite,
	PermBudgetsWrite,
	PermBudgetsApprove,
	PermOrdersApprove,
	PermReportsRead,
	PermContentModerate,
)

// rolePermissions is static configuration; ADMIN always holds every defined permission.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleUser:      permSet(userPermissions),
	RoleModerator: permSet(moderatorPermissions),
	RoleAdmin:     permSet(allPermissions),
}

func permSet(perms []Permission) map[Permission]struct{} {
	out := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		out[p] = struct{}{}
	}
	return out
}

func HasPermission(role Role, perm Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// Permissions returns the sorted permission set of role.
func Permissions(role Role) []Permission {
	set := rolePermissions[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// MinimumRole returns the lowest role holding perm, or "" if none does.
func MinimumRole(perm Permission) Role {
	for _, r := range Roles() {
		if HasPermission(r, perm) {
			return r
		}
	}
	return ""
}
