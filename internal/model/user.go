package model

import "time"

// User represents an administrative account as stored in the `users`
// table.  The password hash never leaves the server, so it is excluded
// from JSON output.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name (3–50 letters, digits or underscores).
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Username     string    `json:"username"`   // users.username
	PasswordHash string    `json:"-"`          // users.password
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}

// Session models an entry in the `sessions` table.  Each row is one active
// login; logging out deletes it.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the session.
//	Token     – opaque random session token (64 hex characters).
//	CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64    `json:"id"`            // sessions.id
	UserID    uint64    `json:"user_id"`       // sessions.user_id
	Token     string    `json:"session_token"` // sessions.session_token
	CreatedAt time.Time `json:"created_at"`    // sessions.created_at
}
