package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrWeakSecret  = errors.New("jwtx: signing secret too short")
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// minSecretLen guards against accidentally configuring a trivial HMAC key.
const minSecretLen = 32

// HS256 signs and verifies tokens with a shared HMAC-SHA256 secret. The same
// service issues and consumes session tokens, so a symmetric key is enough.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds a combined signer/verifier from a shared secret.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	return &HS256{secret: secret, issuer: issuer}, nil
}

func (h *HS256) Alg() string { return "HS256" }

func (h *HS256) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}

func (h *HS256) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return h.secret, nil
	})
	switch {
	case err == nil && token.Valid:
		// fall through to issuer check
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return Claims{}, ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	default:
		return Claims{}, err
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
