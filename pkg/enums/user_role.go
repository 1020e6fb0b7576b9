package enums

import (
	"fmt"
	"strings"
)

// UserRole represents the system-wide permission role of an account.
type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleSupplier UserRole = "SUPPLIER"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleSupplier,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole. Matching is case-insensitive.
func ParseUserRole(value string) (UserRole, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validUserRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
