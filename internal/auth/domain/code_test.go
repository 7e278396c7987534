package domain_test

import (
	"strconv"
	"testing"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestParseOneTimeCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"lower bound", "100000", nil},
		{"upper bound", "999999", nil},
		{"middle", "482913", nil},
		{"below range", "99999", domain.ErrOutOfRangeCode},
		{"leading zero", "012345", domain.ErrOutOfRangeCode},
		{"above range", "1000000", domain.ErrOutOfRangeCode},
		{"huge", "99999999999999999999999", domain.ErrOutOfRangeCode},
		{"empty", "", domain.ErrMalformedCode},
		{"letters", "12a456", domain.ErrMalformedCode},
		{"signed", "+123456", domain.ErrMalformedCode},
		{"negative", "-123456", domain.ErrMalformedCode},
		{"spaces", " 123456", domain.ErrMalformedCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := domain.ParseOneTimeCode(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.input, c.Expose())
		})
	}
}

func TestParseOneTimeCodeRangeBoundaries(t *testing.T) {
	for _, n := range []int{0, 1, 99999, 1000000, 5000000} {
		_, err := domain.ParseOneTimeCode(strconv.Itoa(n))
		require.Error(t, err, "n=%d", n)
	}
	for _, n := range []int{100000, 100001, 555555, 999998, 999999} {
		_, err := domain.ParseOneTimeCode(strconv.Itoa(n))
		require.NoError(t, err, "n=%d", n)
	}
}

func TestNewOneTimeCode(t *testing.T) {
	for range 500 {
		c, err := domain.NewOneTimeCode()
		require.NoError(t, err)

		parsed, err := domain.ParseOneTimeCode(c.Expose())
		require.NoError(t, err)
		require.True(t, c.Equal(parsed))
	}
}

func TestChallengeID(t *testing.T) {
	t.Run("generated ids parse back", func(t *testing.T) {
		id := domain.NewChallengeID()
		parsed, err := domain.ParseChallengeID(id.String())
		require.NoError(t, err)
		require.True(t, id.Equal(parsed))
		require.NotEqual(t, id, domain.NewChallengeID())
	})

	t.Run("upper case is canonicalised", func(t *testing.T) {
		id, err := domain.ParseChallengeID("3F2504E0-4F89-41D3-9A0C-0305E82C3301")
		require.NoError(t, err)
		require.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", id.String())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-uuid", "3f2504e0-4f89-41d3-9a0c", "zzzzzzzz-4f89-41d3-9a0c-0305e82c3301"} {
			_, err := domain.ParseChallengeID(raw)
			require.ErrorIs(t, err, domain.ErrMalformedChallengeID, raw)
		}
	})
}

func TestChallengeMatches(t *testing.T) {
	id := domain.NewChallengeID()
	code, err := domain.ParseOneTimeCode("123456")
	require.NoError(t, err)
	other, err := domain.ParseOneTimeCode("654321")
	require.NoError(t, err)

	c := domain.Challenge{ID: id, Code: code}

	require.True(t, c.Matches(id, code))
	require.False(t, c.Matches(id, other))
	require.False(t, c.Matches(domain.NewChallengeID(), code))
	require.False(t, c.Matches(domain.NewChallengeID(), other))
}
