package models

import "time"

// User's Password field holds the bcrypt hash as stored in the user
// document. Handlers never marshal a User outward directly; profile
// responses are built field by field so the hash stays internal.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
