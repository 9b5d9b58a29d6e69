package model

import "time"

// API key lifecycle statuses. Only StatusActive is ever written during
// issuance; Revoked and Expired are set by operators through the CLI or by
// external tooling. Validation reads whatever status is stored and never
// writes one back.
const (
	StatusActive  = "Active"
	StatusRevoked = "Revoked"
	StatusExpired = "Expired"
)

// APIKey is an issued credential owned by exactly one user. The token is the
// full opaque string handed to the user at registration; its effective
// validity at any instant is (status == Active) AND (now <= expires_at),
// recomputed on every validation call.
type APIKey struct {
	ID        int64     `json:"id" db:"id"`
	Token     string    `json:"token" db:"token"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
