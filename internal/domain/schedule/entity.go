// Package schedule contains read models of the programme: engagements and
// the personal schedules attendees build from them. The notification engine
// only reads these; they are written by the programme editor.
package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Engagement is one performance slot: an artist on a stage at a time.
type Engagement struct {
	ID         uuid.UUID
	EditionID  uuid.UUID
	ArtistName string
	StageName  string
	StartsAt   time.Time
	EndsAt     time.Time
}

// PersonalSchedule is an attendee-built line-up for one edition. A user may
// keep several schedules per edition.
type PersonalSchedule struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	EditionID uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Entry links a personal schedule to an engagement.
type Entry struct {
	ID           uuid.UUID
	ScheduleID   uuid.UUID
	EngagementID uuid.UUID
	CreatedAt    time.Time
}

// Change describes one programme modification to notify attendees about.
// EngagementID nil means an edition-wide change.
type Change struct {
	EditionID    uuid.UUID
	EngagementID *uuid.UUID

	ArtistName string
	StageName  string

	OldStartsAt *time.Time
	NewStartsAt *time.Time

	// Message is an optional organizer-provided text overriding the
	// generated body.
	Message string
}
