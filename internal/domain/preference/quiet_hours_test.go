package preference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(value)
	require.NoError(t, err)
	return tod
}

func TestIsQuiet_NoWindow(t *testing.T) {
	now := mustTime(t, "23:00")
	start := mustTime(t, "22:00")
	end := mustTime(t, "08:00")

	assert.False(t, IsQuiet(now, nil, nil))
	assert.False(t, IsQuiet(now, &start, nil))
	assert.False(t, IsQuiet(now, nil, &end))
}

func TestIsQuiet_SameDayWindow(t *testing.T) {
	start := mustTime(t, "13:00")
	end := mustTime(t, "15:00")

	tests := []struct {
		now   string
		quiet bool
	}{
		{"12:59", false},
		{"13:00", true}, // start is inclusive
		{"14:00", true},
		{"14:59", true},
		{"15:00", false}, // end is exclusive
		{"15:01", false},
		{"03:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			assert.Equal(t, tt.quiet, IsQuiet(mustTime(t, tt.now), &start, &end))
		})
	}
}

func TestIsQuiet_OvernightWindow(t *testing.T) {
	start := mustTime(t, "22:00")
	end := mustTime(t, "08:00")

	tests := []struct {
		now   string
		quiet bool
	}{
		{"21:59", false},
		{"22:00", true}, // start is inclusive
		{"23:30", true},
		{"00:00", true},
		{"03:00", true},
		{"07:59", true},
		{"08:00", false}, // end is exclusive
		{"12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			assert.Equal(t, tt.quiet, IsQuiet(mustTime(t, tt.now), &start, &end))
		})
	}
}

func TestIsQuiet_EqualBoundsNeverQuiet(t *testing.T) {
	bound := mustTime(t, "09:00")

	for _, now := range []string{"09:00", "08:59", "09:01", "00:00", "23:59"} {
		assert.False(t, IsQuiet(mustTime(t, now), &bound, &bound), "now=%s", now)
	}
}

func TestPreference_IsQuietAt_UsesUTCWallClock(t *testing.T) {
	pref := Default(newUserID(t))
	start := mustTime(t, "22:00")
	end := mustTime(t, "08:00")
	pref.QuietHoursStart = &start
	pref.QuietHoursEnd = &end
	pref.TimeZoneID = "Asia/Almaty" // stored, but not consulted

	almaty, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	// 04:00 in Almaty is 23:00 UTC the previous day: inside the window.
	local := time.Date(2026, 7, 11, 4, 0, 0, 0, almaty)
	assert.True(t, pref.IsQuietAt(local))

	// 15:00 in Almaty is 10:00 UTC: outside the window.
	local = time.Date(2026, 7, 11, 15, 0, 0, 0, almaty)
	assert.False(t, pref.IsQuietAt(local))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("22:30")
	require.NoError(t, err)
	assert.Equal(t, 22, tod.Hour())
	assert.Equal(t, 30, tod.Minute())
	assert.Equal(t, "22:30", tod.String())

	for _, invalid := range []string{"", "25:00", "12:60", "nine"} {
		_, err := ParseTimeOfDay(invalid)
		assert.Error(t, err, "value=%s", invalid)
	}
}
