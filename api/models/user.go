package models

import "encoding/gob"

// User is the session-scoped view of an authenticated user. It only carries
// copies of the identifier and display fields, never authoritative state.
type User struct {
	ID       uint
	Username string
	Email    string
	FullName string
	Bio      string
	Website  string
}

// Flash is a one-time notification rendered on the next page.
type Flash struct {
	Category string // success, danger, warning
	Message  string
}

func init() {
	// Flashes travel through the cookie-backed session store.
	gob.Register(Flash{})
}
