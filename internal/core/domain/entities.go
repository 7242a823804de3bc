package domain

// Principal is the authenticated identity acting on a request. It is built by
// the auth middleware from validated JWT claims and is read-only downstream.
type Principal struct {
	ID       string
	Email    string
	FullName string
	Role     Role
}

// Authenticated reports whether the principal was established from a valid token
func (p Principal) Authenticated() bool {
	return p.ID != ""
}
