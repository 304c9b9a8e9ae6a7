package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	now := time.Date(2025, 10, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		spec string
		want time.Time
	}{
		{"2025-10-29T13:00:00Z", time.Date(2025, 10, 29, 13, 0, 0, 0, time.UTC)},
		{"1h", now.Add(-time.Hour)},
		{"1h30m", now.Add(-90 * time.Minute)},
		{"7d", now.Add(-7 * 24 * time.Hour)},
		{"0d", now},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want.UnixMilli(), got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	now := time.Now()

	for _, spec := range []string{"", "yesterday", "d", "-1h", "x7d"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec, now)
			assert.Error(t, err)
		})
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2025, 10, 29, 12, 0, 0, 0, time.UTC)

	t.Run("both bounds", func(t *testing.T) {
		since, until, err := ParseRange("2h", "1h", now)
		require.NoError(t, err)
		assert.Less(t, since, until)
	})

	t.Run("unbounded", func(t *testing.T) {
		since, until, err := ParseRange("", "", now)
		require.NoError(t, err)
		assert.Zero(t, since)
		assert.Zero(t, until)
	})

	t.Run("inverted", func(t *testing.T) {
		_, _, err := ParseRange("1h", "2h", now)
		assert.ErrorContains(t, err, "--since must be before --until")
	})

	t.Run("bad since", func(t *testing.T) {
		_, _, err := ParseRange("soon", "", now)
		assert.ErrorContains(t, err, "invalid --since")
	})
}
