package session

import "go-salon-ws/internal/model"

// Identity is the authenticated actor held by the session store. It is the
// only cross-component shared mutable state; all writes go through the Store.
type Identity struct {
	UserID      string                 `json:"user_id"`
	Email       string                 `json:"email"`
	FullName    string                 `json:"full_name"`
	Role        string                 `json:"role"`
	StoreID     string                 `json:"store_id,omitempty"`
	Permissions []string               `json:"permissions"`
	Profile     map[string]interface{} `json:"profile,omitempty"`
}

// DefaultPermissionsForRole returns the role-based permission template.
// Admin always gets the "all" sentinel and never a computed set.
func DefaultPermissionsForRole(role string) []string {
	if role == model.RoleAdmin {
		return []string{model.PermissionAll}
	}
	out := make([]string, len(model.DefaultStaffPermissions))
	copy(out, model.DefaultStaffPermissions)
	return out
}

// normalize enforces the identity invariants: role defaults to staff, admin
// holds exactly the sentinel, staff without explicit permissions get the
// template merged in, and the set is deduplicated.
func (id *Identity) normalize() {
	if id.Role == "" {
		id.Role = model.RoleStaff
	}
	if id.Role == model.RoleAdmin {
		id.Permissions = []string{model.PermissionAll}
		return
	}
	if len(id.Permissions) == 0 {
		id.Permissions = DefaultPermissionsForRole(id.Role)
		return
	}
	id.Permissions = dedupe(id.Permissions)
}

// HasPermission reports whether the identity may use the given capability.
// Empty tags are always denied; the sentinel grants everything.
func (id *Identity) HasPermission(tag string) bool {
	if tag == "" {
		return false
	}
	for _, p := range id.Permissions {
		if p == model.PermissionAll || p == tag {
			return true
		}
	}
	return false
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// mergeUnique appends tags from extra that are not already in base
func mergeUnique(base, extra []string) []string {
	out := dedupe(base)
	seen := make(map[string]struct{}, len(out))
	for _, t := range out {
		seen[t] = struct{}{}
	}
	for _, t := range extra {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
