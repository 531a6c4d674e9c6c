package domain

import "fmt"

// Role is one of the four platform audiences. The set is closed: every switch
// over Role in this module lists all four values.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleWorker     Role = "worker"
	RoleChampion   Role = "champion"
	RoleGovernment Role = "government"
)

// Roles returns every role in declaration order.
func Roles() []Role {
	return []Role{RoleCitizen, RoleWorker, RoleChampion, RoleGovernment}
}

// ParseRole converts raw input into a Role. Matching is exact.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCitizen, RoleWorker, RoleChampion, RoleGovernment:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Dashboard is the client route that serves the role's portal.
func (r Role) Dashboard() string {
	switch r {
	case RoleCitizen:
		return "/citizen"
	case RoleWorker:
		return "/worker"
	case RoleChampion:
		return "/champion"
	case RoleGovernment:
		return "/government"
	}
	return "/"
}

func (r Role) String() string { return string(r) }
