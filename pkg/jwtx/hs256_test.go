package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestNewHS256RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256([]byte("short"), "issuer")
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h, err := NewHS256(testSecret(), "admin-api")
	require.NoError(t, err)

	claims := NewAccessClaims(
		"acct-1", "coach-pro", "coach@example.com", "Coach",
		[]string{"pwd"},
		DefaultAccessTokenTTL,
		"admin-api",
		time.Now(),
	)

	raw, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "acct-1", got.Subject)
	require.Equal(t, "coach-pro", got.Role)
	require.Equal(t, "coach@example.com", got.Email)
	require.Equal(t, []string{"pwd"}, got.AMR)
	require.NoError(t, got.ValidateExpiry())
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	h, err := NewHS256(testSecret(), "admin-api")
	require.NoError(t, err)

	other, err := NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "admin-api")
	require.NoError(t, err)

	claims := NewAccessClaims("acct-1", "user", "", "", nil, time.Minute, "admin-api", time.Now())
	raw, err := other.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	h, err := NewHS256(testSecret(), "admin-api")
	require.NoError(t, err)

	claims := NewAccessClaims("acct-1", "user", "", "", nil, time.Minute, "admin-api",
		time.Now().Add(-time.Hour))
	raw, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	issuing, err := NewHS256(testSecret(), "other-service")
	require.NoError(t, err)
	verifying, err := NewHS256(testSecret(), "admin-api")
	require.NoError(t, err)

	claims := NewAccessClaims("acct-1", "user", "", "", nil, time.Minute, "other-service", time.Now())
	raw, err := issuing.Sign(claims)
	require.NoError(t, err)

	_, err = verifying.Verify(raw)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	h, err := NewHS256(testSecret(), "admin-api")
	require.NoError(t, err)

	_, err = h.Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrMalformed)
}
