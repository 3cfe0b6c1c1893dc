package auth

import "strings"

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleGuest, RoleMember, RoleAdmin, RoleOwner:
		return true
	default:
		return false
	}
}

// CanRead checks if this role can read resources
func (r UserRole) CanRead() bool {
	return r.IsValid()
}

// CanEdit checks if this role can edit resources
func (r UserRole) CanEdit() bool {
	return r.IsAtLeast(RoleMember)
}

// CanCreate checks if this role can create resources
func (r UserRole) CanCreate() bool {
	return r.IsAtLeast(RoleAdmin)
}

// CanDelete checks if this role can delete resources
func (r UserRole) CanDelete() bool {
	return r.IsAtLeast(RoleOwner)
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	currentLevel, ok := roleLevel(r)
	if !ok {
		return false
	}

	minLevel, ok := roleLevel(minRole)
	if !ok {
		return false
	}

	return currentLevel >= minLevel
}

func roleLevel(r UserRole) (int, bool) {
	switch r {
	case RoleGuest:
		return 0, true
	case RoleMember:
		return 1, true
	case RoleAdmin:
		return 2, true
	case RoleOwner:
		return 3, true
	default:
		return 0, false
	}
}

// ParseRole safely parses a string into a UserRole type.
// Input is trimmed and lowercased so config values round trip.
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(roleStr)))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}
