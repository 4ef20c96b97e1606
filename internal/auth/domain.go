package auth

import "time"

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	SuiteCode    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
