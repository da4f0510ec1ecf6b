package models

import "fmt"

// Role is the closed set of account roles. Values are stored as-is in the
// users table and inside token claims.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleProfessional Role = "PROFESSIONAL"
	RolePatient      Role = "PATIENT"
)

// ParseRole maps a raw string onto the enumeration, rejecting anything
// outside it so a mistyped role can never pass a gate check.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleProfessional:
		return RoleProfessional, nil
	case RolePatient:
		return RolePatient, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In reports whether r belongs to the given role set.
func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}
