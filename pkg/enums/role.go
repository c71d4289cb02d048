package enums

import "fmt"

// Role is the organisation-wide role stored on every user record.
type Role string

const (
	RoleGeneralManager Role = "general_manager"
	RoleProjectManager Role = "project_manager"
	RoleEngineer       Role = "engineer"
	RoleObserver       Role = "observer"
)

var validRoles = []Role{
	RoleGeneralManager,
	RoleProjectManager,
	RoleEngineer,
	RoleObserver,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
