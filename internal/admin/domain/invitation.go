package domain

import "time"

// Invitation is a single-use, time-limited registration grant tying an email
// address to a token. Invitations are retained after consumption for audit.
type Invitation struct {
	ID        string
	Email     string // Intended recipient; not unique across invitations
	Token     string // Cryptographically random, unique, the lookup key
	ExpiresAt time.Time
	UsedAt    *time.Time // nil until consumed
	UsedBy    *string    // Account that consumed it, set exactly once
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the invitation's validity window has passed.
func (inv Invitation) IsExpired() bool {
	return time.Now().After(inv.ExpiresAt)
}

// IsUsed reports whether the invitation has been consumed.
func (inv Invitation) IsUsed() bool {
	return inv.UsedAt != nil
}
