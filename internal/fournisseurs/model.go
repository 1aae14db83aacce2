// Package fournisseurs implements the supplier registry. Records are owned
// by the user that created them; email is unique across the whole registry,
// not per owner.
package fournisseurs

import "time"

// Fournisseur represents a supplier owned by a user account.
type Fournisseur struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
