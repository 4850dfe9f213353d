package domain

import "time"

// Store is a branch of the chain. The store code (ID) doubles as the
// username of the branch's login account.
type Store struct {
	ID        string
	Name      string
	Region    string
	IsActive  bool
	CreatedAt time.Time
}
