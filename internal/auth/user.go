package auth

import "time"

// User is a registered account. Every expense is owned by exactly one user
// and every read/write is scoped to that owner.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}
