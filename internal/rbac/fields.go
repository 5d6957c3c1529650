package rbac

import "sort"

// ResourceType names a resource whose readable fields depend on the caller's role.
type ResourceType string

const (
	ResourceOrders  ResourceType = "orders"
	ResourceBudgets ResourceType = "budgets"
	ResourceClients ResourceType = "clients"
	ResourceUsers   ResourceType = "users"
)

// fieldTiers lists, per resource, the fields unlocked at each role level.
// A role sees its own tier plus every tier below it.
var fieldTiers = map[ResourceType]map[Role][]string{
	ResourceOrders: {
		RoleUser:      {"id", "title", "client_id", "center_id", "status", "quantity", "created_at", "updated_at"},
		RoleModerator: {"unit_price", "total_price"},
	},
	ResourceBudgets: {
		RoleUser:      {"id", "title", "client_id", "center_id", "status", "quantity", "valid_until", "created_at", "updated_at"},
		RoleModerator: {"unit_price", "total_price", "discount"},
	},
	ResourceClients: {
		RoleUser:      {"id", "name", "email", "phone", "city"},
		RoleModerator: {"tax_id", "address", "notes"},
	},
	ResourceUsers: {
		RoleUser:      {"id", "name", "email"},
		RoleModerator: {"role"},
		RoleAdmin:     {"created_at", "updated_at"},
	},
}

// FieldSet is the set of field names a role may read on a resource.
type FieldSet map[string]struct{}

// FieldSelection returns the readable fields of resource for role.
// Unknown roles or resources get an empty set.
func FieldSelection(role Role, resource ResourceType) FieldSet {
	tiers, ok := fieldTiers[resource]
	out := FieldSet{}
	if !ok || !role.Valid() {
		return out
	}
	for _, r := range Roles() {
		if r.Level() > role.Level() {
			break
		}
		for _, f := range tiers[r] {
			out[f] = struct{}{}
		}
	}
	return out
}

func (s FieldSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// Fields returns the field names in sorted order.
func (s FieldSet) Fields() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Project copies only the permitted keys of record.
func (s FieldSet) Project(record map[string]any) map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range record {
		if s.Has(k) {
			out[k] = v
		}
	}
	return out
}
