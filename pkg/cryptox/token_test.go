package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateTokenLengthAndUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.Len(t, token, 43) // 32 bytes base64url, no padding

		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}

func TestGenerateTokenRejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	_, err := GenerateToken(0)
	require.Error(t, err)
	_, err = GenerateToken(-5)
	require.Error(t, err)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	t.Parallel()

	a := FingerprintToken("some-token")
	b := FingerprintToken("some-token")
	c := FingerprintToken("other-token")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 43)
}
