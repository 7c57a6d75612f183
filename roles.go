package auth

// UserRole is the account's role. The deployment knows exactly two: an
// elevated administrator with access to every group, and a group
// administrator scoped to a single group number.
type UserRole string

const (
	// RoleAdmin is the elevated administrator role
	RoleAdmin UserRole = "admin"
	// RoleGroupAdmin is a group administrator, scoped by group number
	RoleGroupAdmin UserRole = "group_admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleGroupAdmin:
		return true
	default:
		return false
	}
}

// IsElevated reports whether the role grants unrestricted admin access
func (r UserRole) IsElevated() bool {
	return r == RoleAdmin
}

// ParseRole validates and returns a role from its string form
func ParseRole(s string) (UserRole, bool) {
	role := UserRole(s)
	return role, role.IsValid()
}
