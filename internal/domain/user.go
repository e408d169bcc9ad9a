package domain

import "time"

// User is created by the sign-up flow and is read-only here.
type User struct {
	ID          string
	ClerkUserID string
	Name        string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
