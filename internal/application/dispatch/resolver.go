// Package dispatch implements recipient resolution and the notification
// dispatch pipeline: preference gating, quiet hours, device fan-out, and the
// per-attempt delivery log.
package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// defaultResolverPageSize is how many schedules one edition page fetch
// returns while aggregating broadcast recipients.
const defaultResolverPageSize = 100

// Resolver maps programme entities to the distinct set of users to notify.
type Resolver struct {
	schedules schedule.Reader
	pageSize  int
}

// NewResolver creates a recipient resolver. pageSize <= 0 selects the
// default.
func NewResolver(schedules schedule.Reader, pageSize int) *Resolver {
	if pageSize <= 0 {
		pageSize = defaultResolverPageSize
	}
	return &Resolver{schedules: schedules, pageSize: pageSize}
}

// ForEngagementChange returns the distinct owners of personal schedules
// containing the engagement. A user holding the engagement in several
// schedules appears once. An empty result means nobody to notify.
func (r *Resolver) ForEngagementChange(ctx context.Context, engagementID uuid.UUID) ([]uuid.UUID, error) {
	scheds, err := r.schedules.ListSchedulesByEngagement(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("resolve engagement recipients: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(scheds))
	users := make([]uuid.UUID, 0, len(scheds))
	for _, sched := range scheds {
		if _, ok := seen[sched.UserID]; ok {
			continue
		}
		seen[sched.UserID] = struct{}{}
		users = append(users, sched.UserID)
	}
	return users, nil
}

// ForEditionBroadcast returns the distinct owners of any personal schedule
// for the edition, walking the paginated fetch to the end before deduping.
func (r *Resolver) ForEditionBroadcast(ctx context.Context, editionID uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	var users []uuid.UUID

	for page := 1; ; page++ {
		scheds, err := r.schedules.ListSchedulesByEdition(ctx, editionID, shared.NewPagination(page, r.pageSize))
		if err != nil {
			return nil, fmt.Errorf("resolve edition recipients: %w", err)
		}
		for _, sched := range scheds {
			if _, ok := seen[sched.UserID]; ok {
				continue
			}
			seen[sched.UserID] = struct{}{}
			users = append(users, sched.UserID)
		}
		if len(scheds) < r.pageSize {
			return users, nil
		}
	}
}
