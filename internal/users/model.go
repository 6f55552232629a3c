// Package users mounts the user administration screen.
package users

// User is a backend-owned user account. Roles arrive as plain names; the
// permission set derived from them stays inside the backend and only
// surfaces through the session profile.
type User struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Project    string   `json:"project"`
	Department string   `json:"department"`
	Roles      []string `json:"roles"`
	IsActive   bool     `json:"is_active"`
}

// RecordID implements listing.Record.
func (u User) RecordID() int64 { return u.ID }
