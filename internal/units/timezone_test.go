package units

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTimezoneValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		timezone string
		expected bool
	}{
		{"valid UTC", "UTC", true},
		{"valid Bogota", "America/Bogota", true},
		{"invalid", "Invalid/Timezone", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTimezoneValid(tt.timezone))
		})
	}
}

func TestCommonTimezonesLoad(t *testing.T) {
	t.Parallel()
	for _, tz := range CommonTimezones {
		assert.True(t, IsTimezoneValid(tz), tz)
		assert.True(t, IsCommonTimezone(tz), tz)
	}
	assert.False(t, IsCommonTimezone("Asia/Tokyo"))
	assert.Contains(t, GetValidTimezonesString(), "America/Lima")
}

func TestLoadLocation(t *testing.T) {
	t.Parallel()

	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("America/Bogota")
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", loc.String())

	_, err = LoadLocation("Nowhere/Land")
	assert.Error(t, err)
}

func TestGetTimezoneLabel(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "UTC (+00:00)", GetTimezoneLabel("UTC", at))
	assert.Equal(t, "Bogota (-05:00)", GetTimezoneLabel("America/Bogota", at))
	assert.Equal(t, "Buenos Aires (-03:00)", GetTimezoneLabel("America/Argentina/Buenos_Aires", at))
	assert.Equal(t, "Bad/Zone", GetTimezoneLabel("Bad/Zone", at))
}
