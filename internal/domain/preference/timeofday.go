// Package preference contains per-user notification preferences and the
// quiet-hours evaluation rules.
package preference

import (
	"fmt"
	"time"

	"github.com/festhub/festival-hub/internal/domain/shared"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight,
// in the range [0, 1440).
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, shared.ErrInvalidTimeOfDay
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%02d:%02d", &hour, &minute); err != nil {
		return 0, shared.WrapError("preference", "ParseTimeOfDay", shared.ErrInvalidFormat, "time of day must be HH:MM", err)
	}
	return NewTimeOfDay(hour, minute)
}

// TimeOfDayFrom extracts the wall-clock component of t in t's location.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component.
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// String formats the value as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Ptr returns a pointer to t, convenient for patch structs.
func (t TimeOfDay) Ptr() *TimeOfDay {
	return &t
}
