package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived for security - typical range is 15m to 1h.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Claims are the access-token claims used across the service.
type Claims struct {
	jwt.RegisteredClaims

	// Role assigned to the account ("admin", "coach-pro", ...).
	Role string `json:"role,omitempty"`

	// Email of the authenticated account
	Email string `json:"email,omitempty"`

	// Name is the display name for the account
	Name string `json:"name,omitempty"`

	// Authentication Methods Reference ["pwd","otp"]
	//	"pwd": Password-based authentication
	//	"otp": One-time password (TOTP)
	AMR []string `json:"amr,omitempty"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(
	subject, role, email, name string,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:  role,
		Email: email,
		Name:  name,
		AMR:   amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
// An empty expected issuer means "don't care".
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry checks exp/nbf against the current time.
func (c *Claims) ValidateExpiry() error {
	now := time.Now()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
