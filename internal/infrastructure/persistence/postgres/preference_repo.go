package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/festhub/festival-hub/internal/domain/preference"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// PreferenceRepository implements preference.Repository on PostgreSQL.
type PreferenceRepository struct {
	conn *Connection
}

// NewPreferenceRepository creates a new preference repository.
func NewPreferenceRepository(conn *Connection) *PreferenceRepository {
	return &PreferenceRepository{conn: conn}
}

const preferenceColumns = `user_id, push_enabled, email_enabled, schedule_changes_enabled,
	reminders_enabled, announcements_enabled, reminder_lead_minutes,
	quiet_hours_start, quiet_hours_end, time_zone_id, created_at, updated_at`

const getPreferenceQuery = `
	SELECT ` + preferenceColumns + `
	FROM notification_preferences
	WHERE user_id = $1`

const savePreferenceQuery = `
	INSERT INTO notification_preferences (user_id, push_enabled, email_enabled,
		schedule_changes_enabled, reminders_enabled, announcements_enabled,
		reminder_lead_minutes, quiet_hours_start, quiet_hours_end, time_zone_id,
		created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (user_id) DO UPDATE SET
		push_enabled = EXCLUDED.push_enabled,
		email_enabled = EXCLUDED.email_enabled,
		schedule_changes_enabled = EXCLUDED.schedule_changes_enabled,
		reminders_enabled = EXCLUDED.reminders_enabled,
		announcements_enabled = EXCLUDED.announcements_enabled,
		reminder_lead_minutes = EXCLUDED.reminder_lead_minutes,
		quiet_hours_start = EXCLUDED.quiet_hours_start,
		quiet_hours_end = EXCLUDED.quiet_hours_end,
		time_zone_id = EXCLUDED.time_zone_id,
		updated_at = EXCLUDED.updated_at`

// Get implements preference.Repository.
func (r *PreferenceRepository) Get(ctx context.Context, userID uuid.UUID) (*preference.Preference, error) {
	pref, err := scanPreference(r.conn.QueryRow(ctx, getPreferenceQuery, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return pref, nil
}

// Save implements preference.Repository.
func (r *PreferenceRepository) Save(ctx context.Context, pref *preference.Preference) error {
	_, err := r.conn.Exec(ctx, savePreferenceQuery,
		pref.UserID,
		pref.PushEnabled,
		pref.EmailEnabled,
		pref.ScheduleChangesEnabled,
		pref.RemindersEnabled,
		pref.AnnouncementsEnabled,
		pref.ReminderLeadMinutes,
		timeOfDayToInt(pref.QuietHoursStart),
		timeOfDayToInt(pref.QuietHoursEnd),
		pref.TimeZoneID,
		pref.CreatedAt,
		pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// scanPreference scans one preference row.
func scanPreference(row pgx.Row) (*preference.Preference, error) {
	var (
		pref       preference.Preference
		start, end *int16
	)
	err := row.Scan(
		&pref.UserID,
		&pref.PushEnabled,
		&pref.EmailEnabled,
		&pref.ScheduleChangesEnabled,
		&pref.RemindersEnabled,
		&pref.AnnouncementsEnabled,
		&pref.ReminderLeadMinutes,
		&start,
		&end,
		&pref.TimeZoneID,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	pref.QuietHoursStart = intToTimeOfDay(start)
	pref.QuietHoursEnd = intToTimeOfDay(end)
	return &pref, nil
}

// Quiet-hours bounds are stored as minutes since midnight, NULL for unset.

func timeOfDayToInt(t *preference.TimeOfDay) *int16 {
	if t == nil {
		return nil
	}
	v := int16(*t)
	return &v
}

func intToTimeOfDay(v *int16) *preference.TimeOfDay {
	if v == nil {
		return nil
	}
	t := preference.TimeOfDay(*v)
	return &t
}
