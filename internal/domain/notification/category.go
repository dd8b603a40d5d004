// Package notification contains the delivery log aggregate, notification
// categories, and the push provider port.
package notification

import (
	"github.com/festhub/festival-hub/internal/domain/preference"
)

// Category classifies a notification for per-category preference gating.
type Category string

const (
	CategoryScheduleChange Category = "schedule_change"
	CategoryReminder       Category = "reminder"
	CategoryAnnouncement   Category = "announcement"
)

// Known reports whether the category has a dedicated preference toggle.
func (c Category) Known() bool {
	switch c {
	case CategoryScheduleChange, CategoryReminder, CategoryAnnouncement:
		return true
	}
	return false
}

// EnabledIn reports whether the user's preferences allow this category.
// Categories without a dedicated toggle are allowed, so that adding a new
// category never silently drops traffic.
func (c Category) EnabledIn(pref *preference.Preference) bool {
	switch c {
	case CategoryScheduleChange:
		return pref.ScheduleChangesEnabled
	case CategoryReminder:
		return pref.RemindersEnabled
	case CategoryAnnouncement:
		return pref.AnnouncementsEnabled
	default:
		return true
	}
}

// String returns the wire representation.
func (c Category) String() string {
	return string(c)
}
