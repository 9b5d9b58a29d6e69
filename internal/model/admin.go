package model

import "time"

// Admin is an operator account for the protected read endpoints. Passwords
// are stored as bcrypt hashes. Admins are created via registration or the
// CLI and are never updated or deleted by the service itself.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
