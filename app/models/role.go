package models

// Role is the authorization level of an account. Roles form a total order:
// a higher role satisfies any check that requires a lower or equal one.
type Role string

const (
	RoleAuthor Role = "AUTHOR"
	RoleAdmin  Role = "ADMIN"
)

// rank maps a role onto its position in the hierarchy. Unknown roles rank 0
// and satisfy nothing.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleAuthor:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// Satisfies reports whether a principal holding r passes a check that
// requires the given role.
func (r Role) Satisfies(required Role) bool {
	if r.rank() == 0 {
		return false
	}
	return r == required || r.rank() >= required.rank()
}
