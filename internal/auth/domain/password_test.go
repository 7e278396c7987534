package domain_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestParsePassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"empty", "", false},
		{"seven ascii", "1234567", false},
		{"eight ascii", "12345678", true},
		{"long", strings.Repeat("x", 128), true},
		// 7 runes but 14 bytes: must be rejected on character count.
		{"seven multibyte", "пароль1", false},
		{"eight multibyte", "пароль12", true},
		{"eight emoji", "🔒🔒🔒🔒🔒🔒🔒🔒", true},
		{"spaces count", "        ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := domain.ParsePassword(tt.input)
			if !tt.ok {
				require.ErrorIs(t, err, domain.ErrPasswordTooShort)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.input, p.Expose())
			require.Equal(t, "[REDACTED]", p.String())
		})
	}
}
