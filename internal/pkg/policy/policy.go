package policy

import "amfb-directdebit/internal/core/domain"

// Authorize reports whether the principal may perform an operation restricted
// to the given roles. An empty allow-list only requires authentication.
// Evaluated before any external call so a rejected request has no side effects.
func Authorize(p domain.Principal, allowedRoles ...domain.Role) bool {
	if !p.Authenticated() {
		return false
	}
	if len(allowedRoles) == 0 {
		return true
	}
	for _, role := range allowedRoles {
		if p.Role == role {
			return true
		}
	}
	return false
}
