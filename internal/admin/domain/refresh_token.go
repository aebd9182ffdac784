package domain

import "time"

// RefreshToken is a long-lived session credential. Only its fingerprint is
// stored; the raw token lives with the client.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
