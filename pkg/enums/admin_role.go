package enums

import "fmt"

// AdminRole scopes what a back-office user may do.
type AdminRole string

const (
	// AdminRoleOwner manages everything, including other admin users.
	AdminRoleOwner AdminRole = "owner"
	// AdminRoleStaff handles day-to-day orders and cannot change settings.
	AdminRoleStaff AdminRole = "staff"
)

var validAdminRoles = []AdminRole{
	AdminRoleOwner,
	AdminRoleStaff,
}

// String implements fmt.Stringer.
func (r AdminRole) String() string {
	return string(r)
}

// IsValid reports whether the role is recognized.
func (r AdminRole) IsValid() bool {
	for _, candidate := range validAdminRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseAdminRole converts a raw string into an AdminRole.
func ParseAdminRole(value string) (AdminRole, error) {
	for _, candidate := range validAdminRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid admin role %q", value)
}
