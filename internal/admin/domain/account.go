package domain

import "time"

type Account struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string     // argon2 encoded
	Role          Role       // Primary role, exactly one
	TOTPSecret    *string    // base32 encoded (nullable)
	TOTPEnabledAt *time.Time // Timestamp when two-factor was confirmed (nullable)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TOTPEnabled reports whether the account has confirmed two-factor enrollment.
func (a Account) TOTPEnabled() bool {
	return a.TOTPEnabledAt != nil
}
