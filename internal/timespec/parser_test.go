package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tallinn := time.FixedZone("EET", 2*60*60)
	now := time.Date(2025, 10, 31, 23, 45, 0, 0, tallinn)

	tests := []struct {
		name     string
		value    string
		expected string
		wantErr  bool
	}{
		{name: "empty means today", value: "", expected: "2025-10-31"},
		{name: "explicit date", value: "2025-11-01", expected: "2025-11-01"},
		{name: "leap day", value: "2024-02-29", expected: "2024-02-29"},
		{name: "impossible day", value: "2025-02-30", wantErr: true},
		{name: "not a leap year", value: "2025-02-29", wantErr: true},
		{name: "slashes", value: "2025/11/01", wantErr: true},
		{name: "free text", value: "tomorrow", wantErr: true},
		{name: "timestamp", value: "2025-11-01T09:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.value, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, FormatDate(got))
			assert.Equal(t, tallinn, got.Location())
		})
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 11, 1, 17, 3, 9, 42, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), Today(now))
}
