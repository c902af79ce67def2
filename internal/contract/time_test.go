package contract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

// TestParseRelativeTimeUnit covers various valid and invalid cases.
func TestParseRelativeTimeUnit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "valid plural months (mixed case)",
			input:    "3 MoNtHs AgO",
			expected: fixedNow.AddDate(0, -3, 0),
		},
		{
			name:     "valid singular week (capitalized)",
			input:    "1 Week Ago",
			expected: fixedNow.Add(-7 * 24 * time.Hour),
		},
		{
			name:     "valid 10 days with extra spaces",
			input:    " 10  DAYS AGO ",
			expected: fixedNow.Add(-10 * 24 * time.Hour),
		},
		{
			name:        "invalid missing ago",
			input:       "2 years",
			expectError: true,
		},
		{
			name:        "invalid bad unit (decades)",
			input:       "4 decades ago",
			expectError: true,
		},
		{
			name:        "invalid value out of range",
			input:       "9223372036854775807 minutes ago",
			expectError: true,
		},
		{
			name:     "large day count stays in the past",
			input:    "100000 days ago",
			expected: fixedNow.AddDate(0, 0, -100000),
		},
		{
			name:        "invalid non-numeric value",
			input:       "one year ago",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tResult, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tResult)
		})
	}
}

func TestParseCursorSpec(t *testing.T) {
	t.Run("empty is unset", func(t *testing.T) {
		spec, err := ParseCursorSpec("  ")
		require.NoError(t, err)
		assert.False(t, spec.Set)
	})

	t.Run("progress", func(t *testing.T) {
		spec, err := ParseCursorSpec("42.5")
		require.NoError(t, err)
		require.NotNil(t, spec.Progress)
		assert.Equal(t, 42.5, *spec.Progress)

		spec, err = ParseCursorSpec("100%")
		require.NoError(t, err)
		assert.Equal(t, 100.0, *spec.Progress)
	})

	t.Run("progress out of range", func(t *testing.T) {
		_, err := ParseCursorSpec("120")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidCursor))
	})

	t.Run("absolute timestamp", func(t *testing.T) {
		spec, err := ParseCursorSpec("2024-01-02T14:00:00Z")
		require.NoError(t, err)
		assert.Nil(t, spec.Progress)
		assert.Equal(t, time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC), spec.At)
	})

	t.Run("relative", func(t *testing.T) {
		spec, err := ParseCursorSpec("2 days ago")
		require.NoError(t, err)
		at, ok, err := spec.ResolveTime(fixedNow)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, fixedNow.Add(-48*time.Hour), at)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseCursorSpec("yesterday-ish")
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})
}

func TestCursorSpecResolveTime(t *testing.T) {
	p := 50.0
	_, ok, err := CursorSpec{Set: true, Progress: &p}.ResolveTime(fixedNow)
	require.NoError(t, err)
	assert.False(t, ok, "progress specs are resolved by the time scale")

	_, ok, err = CursorSpec{}.ResolveTime(fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)

	at, ok, err := CursorSpec{Set: true, At: fixedNow}.ResolveTime(time.Time{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fixedNow, at)
}

func FuzzParseCursorSpec(f *testing.F) {
	f.Add("0")
	f.Add("100")
	f.Add("3 weeks ago")
	f.Add("2024-01-01T00:00:00Z")
	f.Add("")
	f.Fuzz(func(t *testing.T, s string) {
		spec, err := ParseCursorSpec(s)
		if err != nil {
			return
		}
		if spec.Progress != nil {
			assert.GreaterOrEqual(t, *spec.Progress, 0.0)
			assert.LessOrEqual(t, *spec.Progress, 100.0)
		}
	})
}
