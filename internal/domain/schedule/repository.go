package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/shared"
)

// Reader is the read-only view of the programme the notification engine
// needs. The owning context maintains the rows.
type Reader interface {
	// ListSchedulesByEdition returns the edition's personal schedules,
	// one page at a time. Multiple schedules of one user all appear.
	ListSchedulesByEdition(ctx context.Context, editionID uuid.UUID, page shared.Pagination) ([]*PersonalSchedule, error)

	// ListSchedulesByEngagement returns every personal schedule with an
	// entry referencing the engagement.
	ListSchedulesByEngagement(ctx context.Context, engagementID uuid.UUID) ([]*PersonalSchedule, error)

	// ListEngagementsStartingBetween returns engagements whose start
	// falls in [from, to), ordered by start time.
	ListEngagementsStartingBetween(ctx context.Context, from, to time.Time) ([]*Engagement, error)
}
