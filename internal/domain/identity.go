package domain

// Role is the coarse authorization class carried in token claims.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStore Role = "store"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStore
}

// Identity is the authenticated subject derived from verified claims.
// The store affiliation is only reachable through StoreAffiliation so an
// admin identity can never be read as store-scoped.
type Identity struct {
	SubjectID   string
	Role        Role
	DisplayName string

	store string
}

// NewAdminIdentity builds an identity authorized for all stores.
func NewAdminIdentity(subjectID, displayName string) Identity {
	return Identity{SubjectID: subjectID, Role: RoleAdmin, DisplayName: displayName}
}

// NewStoreIdentity builds an identity scoped to a single store.
func NewStoreIdentity(subjectID, displayName, storeID string) Identity {
	return Identity{SubjectID: subjectID, Role: RoleStore, DisplayName: displayName, store: storeID}
}

// StoreAffiliation returns the owning store code for store-role identities.
// The second return is false for admin identities.
func (i Identity) StoreAffiliation() (string, bool) {
	if i.Role != RoleStore {
		return "", false
	}
	return i.store, true
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
