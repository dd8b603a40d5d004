package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// fakeScheduleReader serves canned schedules with real pagination over the
// edition listing.
type fakeScheduleReader struct {
	byEdition    map[uuid.UUID][]*schedule.PersonalSchedule
	byEngagement map[uuid.UUID][]*schedule.PersonalSchedule
	engagements  []*schedule.Engagement
}

func newFakeScheduleReader() *fakeScheduleReader {
	return &fakeScheduleReader{
		byEdition:    make(map[uuid.UUID][]*schedule.PersonalSchedule),
		byEngagement: make(map[uuid.UUID][]*schedule.PersonalSchedule),
	}
}

func (r *fakeScheduleReader) ListSchedulesByEdition(_ context.Context, editionID uuid.UUID, page shared.Pagination) ([]*schedule.PersonalSchedule, error) {
	all := r.byEdition[editionID]
	offset := page.Offset()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + page.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeScheduleReader) ListSchedulesByEngagement(_ context.Context, engagementID uuid.UUID) ([]*schedule.PersonalSchedule, error) {
	return r.byEngagement[engagementID], nil
}

func (r *fakeScheduleReader) ListEngagementsStartingBetween(_ context.Context, from, to time.Time) ([]*schedule.Engagement, error) {
	var out []*schedule.Engagement
	for _, e := range r.engagements {
		if !e.StartsAt.Before(from) && e.StartsAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func sched(userID, editionID uuid.UUID) *schedule.PersonalSchedule {
	return &schedule.PersonalSchedule{
		ID:        uuid.New(),
		UserID:    userID,
		EditionID: editionID,
	}
}

func TestForEngagementChange_DedupesAcrossSchedules(t *testing.T) {
	reader := newFakeScheduleReader()
	engagementID := uuid.New()
	editionID := uuid.New()

	fan := uuid.New()
	other := uuid.New()

	// fan keeps the engagement in two separate schedules.
	reader.byEngagement[engagementID] = []*schedule.PersonalSchedule{
		sched(fan, editionID),
		sched(fan, editionID),
		sched(other, editionID),
	}

	users, err := NewResolver(reader, 0).ForEngagementChange(context.Background(), engagementID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{fan, other}, users)
}

func TestForEngagementChange_NoSchedules(t *testing.T) {
	users, err := NewResolver(newFakeScheduleReader(), 0).ForEngagementChange(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestForEditionBroadcast_AggregatesAcrossPages(t *testing.T) {
	reader := newFakeScheduleReader()
	editionID := uuid.New()

	repeat := uuid.New()
	want := []uuid.UUID{repeat}
	rows := []*schedule.PersonalSchedule{sched(repeat, editionID)}
	for i := 0; i < 5; i++ {
		userID := uuid.New()
		want = append(want, userID)
		rows = append(rows, sched(userID, editionID))
	}
	// A duplicate owner on what will be the second page.
	rows = append(rows, sched(repeat, editionID))
	reader.byEdition[editionID] = rows

	// Page size 3 forces three fetches over 7 rows.
	users, err := NewResolver(reader, 3).ForEditionBroadcast(context.Background(), editionID)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, users)
}

func TestForEditionBroadcast_ExactPageBoundary(t *testing.T) {
	reader := newFakeScheduleReader()
	editionID := uuid.New()

	var want []uuid.UUID
	for i := 0; i < 6; i++ {
		userID := uuid.New()
		want = append(want, userID)
		reader.byEdition[editionID] = append(reader.byEdition[editionID], sched(userID, editionID))
	}

	// 6 rows at page size 3: the final fetch returns an empty page.
	users, err := NewResolver(reader, 3).ForEditionBroadcast(context.Background(), editionID)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, users)
}
