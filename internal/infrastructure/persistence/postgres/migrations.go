package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_notification_tables",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_schedule_read_models",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: device tokens, preferences, delivery log
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS device_tokens (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	token TEXT NOT NULL,
	platform TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	last_used_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

	CONSTRAINT uq_device_tokens_user_token UNIQUE (user_id, token)
);

CREATE INDEX IF NOT EXISTS idx_device_tokens_user_active
	ON device_tokens (user_id) WHERE active;
CREATE INDEX IF NOT EXISTS idx_device_tokens_token
	ON device_tokens (token);

CREATE TABLE IF NOT EXISTS notification_preferences (
	user_id UUID PRIMARY KEY,
	push_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	email_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	schedule_changes_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	reminders_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	announcements_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	reminder_lead_minutes INTEGER NOT NULL DEFAULT 30 CHECK (reminder_lead_minutes >= 0),
	quiet_hours_start SMALLINT CHECK (quiet_hours_start BETWEEN 0 AND 1439),
	quiet_hours_end SMALLINT CHECK (quiet_hours_end BETWEEN 0 AND 1439),
	time_zone_id TEXT NOT NULL DEFAULT 'UTC',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notification_logs (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	device_id UUID NOT NULL,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	sent_at TIMESTAMPTZ NOT NULL,
	delivered BOOLEAN NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	related_type TEXT NOT NULL DEFAULT '',
	related_id UUID,
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notification_logs_user_sent
	ON notification_logs (user_id, sent_at DESC);
CREATE INDEX IF NOT EXISTS idx_notification_logs_user_unread
	ON notification_logs (user_id) WHERE NOT read;
CREATE INDEX IF NOT EXISTS idx_notification_logs_related
	ON notification_logs (user_id, category, related_type, related_id);
`

const migration001Down = `
DROP TABLE IF EXISTS notification_logs;
DROP TABLE IF EXISTS notification_preferences;
DROP TABLE IF EXISTS device_tokens;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: programme read models
// The schedule editor owns these tables; the engine keeps a local copy of the
// schema for standalone deployments and tests.
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS engagements (
	id UUID PRIMARY KEY,
	edition_id UUID NOT NULL,
	artist_name TEXT NOT NULL,
	stage_name TEXT NOT NULL,
	starts_at TIMESTAMPTZ NOT NULL,
	ends_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_engagements_edition
	ON engagements (edition_id);
CREATE INDEX IF NOT EXISTS idx_engagements_starts_at
	ON engagements (starts_at);

CREATE TABLE IF NOT EXISTS personal_schedules (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	edition_id UUID NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_personal_schedules_edition
	ON personal_schedules (edition_id, id);
CREATE INDEX IF NOT EXISTS idx_personal_schedules_user
	ON personal_schedules (user_id);

CREATE TABLE IF NOT EXISTS personal_schedule_entries (
	id UUID PRIMARY KEY,
	schedule_id UUID NOT NULL REFERENCES personal_schedules (id) ON DELETE CASCADE,
	engagement_id UUID NOT NULL REFERENCES engagements (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

	CONSTRAINT uq_schedule_entries UNIQUE (schedule_id, engagement_id)
);

CREATE INDEX IF NOT EXISTS idx_schedule_entries_engagement
	ON personal_schedule_entries (engagement_id);
`

const migration002Down = `
DROP TABLE IF EXISTS personal_schedule_entries;
DROP TABLE IF EXISTS personal_schedules;
DROP TABLE IF EXISTS engagements;
`
