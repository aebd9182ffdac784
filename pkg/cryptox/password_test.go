package cryptox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func useTestPepper(t *testing.T) {
	t.Helper()
	SetPepperPath(filepath.Join(t.TempDir(), "pepper"))
	pepper = "" // force reload from the temp path
}

func TestHashAndVerifyPassword(t *testing.T) {
	useTestPepper(t)

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.Error(t, VerifyPassword("wrong password", hash))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	useTestPepper(t)

	h1, err := HashPassword("same input")
	require.NoError(t, err)
	h2, err := HashPassword("same input")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.NoError(t, VerifyPassword("same input", h1))
	require.NoError(t, VerifyPassword("same input", h2))
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	useTestPepper(t)

	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$not-base64!$aGFzaA",
	} {
		require.Error(t, VerifyPassword("whatever", bad), "hash %q", bad)
	}
}
