package auth

import "github.com/gp-maquinas/maintenance-service/internal/domain"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Authorize decides whether an identity may touch data owned by targetStore.
// Pure function, no I/O.
//
// Admins are allowed for every store, including an empty target meaning an
// all-stores view. Store identities are allowed only for their own store; an
// empty target is a deny because a store-scoped caller must always name a
// store (callers reject such requests as validation errors before business
// logic runs, rather than silently routing to a default store).
func Authorize(identity domain.Identity, targetStore string) Decision {
	if identity.IsAdmin() {
		return Allow
	}
	affiliation, ok := identity.StoreAffiliation()
	if !ok || targetStore == "" {
		return Deny
	}
	if affiliation == targetStore {
		return Allow
	}
	return Deny
}
