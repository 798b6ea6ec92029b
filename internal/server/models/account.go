package models

import "time"

// Account is a registered identity. Email is stored in canonical (trimmed,
// lower-case) form; PasswordHash never holds the plaintext.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
