package preference

import (
	"time"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/shared"
)

// DefaultReminderLeadMinutes is how long before an engagement starts a
// reminder fires when the user has not chosen a lead time.
const DefaultReminderLeadMinutes = 30

// Preference holds one user's notification settings. The row is optional:
// users who never touched their settings have no row and are served
// Default().
type Preference struct {
	UserID uuid.UUID

	// Channel toggles. PushEnabled is the master switch for the push
	// pipeline; EmailEnabled is consumed by the mail collaborator.
	PushEnabled  bool
	EmailEnabled bool

	// Per-category toggles.
	ScheduleChangesEnabled bool
	RemindersEnabled       bool
	AnnouncementsEnabled   bool

	// ReminderLeadMinutes is the lead time for engagement reminders.
	ReminderLeadMinutes int

	// QuietHoursStart/End bound the optional suppression window. Both nil
	// means no quiet hours.
	QuietHoursStart *TimeOfDay
	QuietHoursEnd   *TimeOfDay

	// TimeZoneID is the user's IANA time zone. Stored for clients and
	// future use; the quiet-hours evaluation compares UTC wall-clock
	// times and does not consult it.
	TimeZoneID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Default returns the settings applied to users without a stored row:
// everything enabled, a 30 minute reminder lead, no quiet hours.
func Default(userID uuid.UUID) *Preference {
	return &Preference{
		UserID:                 userID,
		PushEnabled:            true,
		EmailEnabled:           true,
		ScheduleChangesEnabled: true,
		RemindersEnabled:       true,
		AnnouncementsEnabled:   true,
		ReminderLeadMinutes:    DefaultReminderLeadMinutes,
		TimeZoneID:             "UTC",
	}
}

// IsQuietAt reports whether t falls inside the user's quiet hours. The
// comparison uses t's UTC wall-clock component.
func (p *Preference) IsQuietAt(t time.Time) bool {
	return IsQuiet(TimeOfDayFrom(t.UTC()), p.QuietHoursStart, p.QuietHoursEnd)
}

// Updates is a merge patch over a Preference. A nil field leaves the current
// value untouched; a set field overwrites it. Quiet-hours bounds distinguish
// "omitted" (nil pointer) from "cleared" (the Clear flags).
type Updates struct {
	PushEnabled            *bool
	EmailEnabled           *bool
	ScheduleChangesEnabled *bool
	RemindersEnabled       *bool
	AnnouncementsEnabled   *bool
	ReminderLeadMinutes    *int

	QuietHoursStart *TimeOfDay
	QuietHoursEnd   *TimeOfDay
	ClearQuietHours bool

	TimeZoneID *string
}

// Validate checks the patch fields that carry constraints.
func (u Updates) Validate() error {
	if u.ReminderLeadMinutes != nil && *u.ReminderLeadMinutes < 0 {
		return shared.ErrInvalidLeadTime
	}
	if u.TimeZoneID != nil {
		if _, err := time.LoadLocation(*u.TimeZoneID); err != nil {
			return shared.WrapError("preference", "Validate", shared.ErrInvalidInput, "unknown time zone", err)
		}
	}
	return nil
}

// Apply merges the patch into p and returns the names of the fields that
// changed, for logging.
func (p *Preference) Apply(u Updates, now time.Time) []string {
	var changed []string

	if u.PushEnabled != nil && *u.PushEnabled != p.PushEnabled {
		p.PushEnabled = *u.PushEnabled
		changed = append(changed, "push_enabled")
	}
	if u.EmailEnabled != nil && *u.EmailEnabled != p.EmailEnabled {
		p.EmailEnabled = *u.EmailEnabled
		changed = append(changed, "email_enabled")
	}
	if u.ScheduleChangesEnabled != nil && *u.ScheduleChangesEnabled != p.ScheduleChangesEnabled {
		p.ScheduleChangesEnabled = *u.ScheduleChangesEnabled
		changed = append(changed, "schedule_changes_enabled")
	}
	if u.RemindersEnabled != nil && *u.RemindersEnabled != p.RemindersEnabled {
		p.RemindersEnabled = *u.RemindersEnabled
		changed = append(changed, "reminders_enabled")
	}
	if u.AnnouncementsEnabled != nil && *u.AnnouncementsEnabled != p.AnnouncementsEnabled {
		p.AnnouncementsEnabled = *u.AnnouncementsEnabled
		changed = append(changed, "announcements_enabled")
	}
	if u.ReminderLeadMinutes != nil && *u.ReminderLeadMinutes != p.ReminderLeadMinutes {
		p.ReminderLeadMinutes = *u.ReminderLeadMinutes
		changed = append(changed, "reminder_lead_minutes")
	}

	if u.ClearQuietHours {
		if p.QuietHoursStart != nil || p.QuietHoursEnd != nil {
			p.QuietHoursStart = nil
			p.QuietHoursEnd = nil
			changed = append(changed, "quiet_hours")
		}
	} else {
		if u.QuietHoursStart != nil {
			v := *u.QuietHoursStart
			p.QuietHoursStart = &v
			changed = append(changed, "quiet_hours_start")
		}
		if u.QuietHoursEnd != nil {
			v := *u.QuietHoursEnd
			p.QuietHoursEnd = &v
			changed = append(changed, "quiet_hours_end")
		}
	}

	if u.TimeZoneID != nil && *u.TimeZoneID != p.TimeZoneID {
		p.TimeZoneID = *u.TimeZoneID
		changed = append(changed, "time_zone_id")
	}

	if len(changed) > 0 {
		p.UpdatedAt = now
	}
	return changed
}
