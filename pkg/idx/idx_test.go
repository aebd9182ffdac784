package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesValidULIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[ID]struct{})
	for range 1000 {
		id := New()
		require.False(t, id.IsZero())

		_, err := Parse(id.String())
		require.NoError(t, err)

		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewAtEmbedsTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewAt(at)

	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "not-a-ulid", "0000"} {
		_, err := Parse(input)
		require.ErrorIs(t, err, ErrInvalid, "input %q", input)
	}
}

func TestIDsSortLexicographicallyByTime(t *testing.T) {
	t.Parallel()

	earlier := NewAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	require.Less(t, earlier.String(), later.String())
}
