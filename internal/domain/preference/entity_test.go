package preference

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func TestDefault(t *testing.T) {
	userID := newUserID(t)
	pref := Default(userID)

	assert.Equal(t, userID, pref.UserID)
	assert.True(t, pref.PushEnabled)
	assert.True(t, pref.EmailEnabled)
	assert.True(t, pref.ScheduleChangesEnabled)
	assert.True(t, pref.RemindersEnabled)
	assert.True(t, pref.AnnouncementsEnabled)
	assert.Equal(t, DefaultReminderLeadMinutes, pref.ReminderLeadMinutes)
	assert.Nil(t, pref.QuietHoursStart)
	assert.Nil(t, pref.QuietHoursEnd)
	assert.Equal(t, "UTC", pref.TimeZoneID)
}

func TestApply_NilFieldsLeaveValues(t *testing.T) {
	pref := Default(newUserID(t))
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	changed := pref.Apply(Updates{}, now)

	assert.Empty(t, changed)
	assert.True(t, pref.PushEnabled)
	assert.True(t, pref.UpdatedAt.IsZero())
}

func TestApply_SetFieldsOverwrite(t *testing.T) {
	pref := Default(newUserID(t))
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	off := false
	lead := 45
	changed := pref.Apply(Updates{
		PushEnabled:         &off,
		ReminderLeadMinutes: &lead,
	}, now)

	assert.ElementsMatch(t, []string{"push_enabled", "reminder_lead_minutes"}, changed)
	assert.False(t, pref.PushEnabled)
	assert.Equal(t, 45, pref.ReminderLeadMinutes)
	assert.True(t, pref.EmailEnabled, "untouched field keeps its value")
	assert.Equal(t, now, pref.UpdatedAt)
}

func TestApply_QuietHours(t *testing.T) {
	pref := Default(newUserID(t))
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	start, err := NewTimeOfDay(22, 0)
	require.NoError(t, err)
	end, err := NewTimeOfDay(8, 0)
	require.NoError(t, err)

	changed := pref.Apply(Updates{QuietHoursStart: &start, QuietHoursEnd: &end}, now)
	assert.ElementsMatch(t, []string{"quiet_hours_start", "quiet_hours_end"}, changed)
	require.NotNil(t, pref.QuietHoursStart)
	require.NotNil(t, pref.QuietHoursEnd)
	assert.Equal(t, "22:00", pref.QuietHoursStart.String())
	assert.Equal(t, "08:00", pref.QuietHoursEnd.String())

	changed = pref.Apply(Updates{ClearQuietHours: true}, now)
	assert.Equal(t, []string{"quiet_hours"}, changed)
	assert.Nil(t, pref.QuietHoursStart)
	assert.Nil(t, pref.QuietHoursEnd)

	// Clearing an already empty window is a no-op.
	changed = pref.Apply(Updates{ClearQuietHours: true}, now)
	assert.Empty(t, changed)
}

func TestUpdates_Validate(t *testing.T) {
	negative := -5
	assert.Error(t, Updates{ReminderLeadMinutes: &negative}.Validate())

	zero := 0
	assert.NoError(t, Updates{ReminderLeadMinutes: &zero}.Validate())

	badTZ := "Mars/Olympus_Mons"
	assert.Error(t, Updates{TimeZoneID: &badTZ}.Validate())

	goodTZ := "Europe/Berlin"
	assert.NoError(t, Updates{TimeZoneID: &goodTZ}.Validate())
}
