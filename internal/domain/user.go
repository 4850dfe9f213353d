package domain

import "time"

// User is the credential record backing a login. Admin accounts have a
// numeric-style id and no store; store accounts log in with their store code.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	StoreID      *string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity maps the record to its redacted identity view.
func (u *User) Identity() Identity {
	if u.Role == RoleAdmin || u.StoreID == nil {
		return NewAdminIdentity(u.ID, u.FullName)
	}
	return NewStoreIdentity(u.ID, u.FullName, *u.StoreID)
}
