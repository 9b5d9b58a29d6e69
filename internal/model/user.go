package model

import "time"

// User is a registered end user. Each user owns exactly one API key, created
// in the same transaction as the user row; the relation is never reassigned.
type User struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	APIKeyID  int64     `json:"api_key_id" db:"api_key_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserWithKey is one row of the admin listing: a user joined to its API key.
type UserWithKey struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	KeyToken  string    `json:"api_key" db:"token"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Status    string    `json:"status" db:"status"`
}
