package user

import "time"

// User represents a user in the system. Identity management (signup,
// credentials) lives in the external authentication system; this service
// only reads the directory.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}
