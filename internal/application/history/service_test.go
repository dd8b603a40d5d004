package history

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

type fakeLogRepo struct {
	rows        []*notification.Log
	countCalls  int
	markedAllOf []uuid.UUID
}

func (f *fakeLogRepo) Create(_ context.Context, row *notification.Log) error {
	copied := *row
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeLogRepo) GetByID(_ context.Context, id uuid.UUID) (*notification.Log, error) {
	for _, row := range f.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, shared.ErrNotificationNotFound
}

func (f *fakeLogRepo) ListByUser(_ context.Context, userID uuid.UUID, page shared.Pagination) ([]*notification.Log, error) {
	var out []*notification.Log
	for _, row := range f.rows {
		if row.UserID == userID {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	offset := page.Offset()
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + page.Limit()
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (f *fakeLogRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	f.countCalls++
	n := 0
	for _, row := range f.rows {
		if row.UserID == userID && !row.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeLogRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Read = true
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

func (f *fakeLogRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	f.markedAllOf = append(f.markedAllOf, userID)
	for _, row := range f.rows {
		if row.UserID == userID {
			row.Read = true
		}
	}
	return nil
}

func (f *fakeLogRepo) ExistsForRelated(_ context.Context, _ uuid.UUID, _ notification.Category, _ string, _ uuid.UUID) (bool, error) {
	return false, nil
}

type fakeUnreadCache struct {
	counts      map[uuid.UUID]int
	invalidated int
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{counts: make(map[uuid.UUID]int)}
}

func (c *fakeUnreadCache) Get(_ context.Context, userID uuid.UUID) (int, error) {
	count, ok := c.counts[userID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return count, nil
}

func (c *fakeUnreadCache) Set(_ context.Context, userID uuid.UUID, count int) error {
	c.counts[userID] = count
	return nil
}

func (c *fakeUnreadCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.invalidated++
	delete(c.counts, userID)
	return nil
}

func addRow(repo *fakeLogRepo, userID uuid.UUID, sentAt time.Time, read bool) *notification.Log {
	row := notification.NewDelivered(userID, uuid.New(), notification.CategoryAnnouncement, "t", "b", sentAt)
	row.Read = read
	_ = repo.Create(context.Background(), row)
	return row
}

func TestList_NewestFirstScopedToUser(t *testing.T) {
	repo := &fakeLogRepo{}
	svc := NewService(repo, nil, nil)
	userID := uuid.New()
	base := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	oldest := addRow(repo, userID, base, false)
	newest := addRow(repo, userID, base.Add(2*time.Hour), false)
	middle := addRow(repo, userID, base.Add(time.Hour), false)
	addRow(repo, uuid.New(), base.Add(3*time.Hour), false) // someone else's

	rows, err := svc.List(context.Background(), userID, shared.DefaultPagination())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	assert.Equal(t, oldest.ID, rows[2].ID)
}

func TestUnreadCount_CacheAside(t *testing.T) {
	repo := &fakeLogRepo{}
	cache := newFakeUnreadCache()
	svc := NewService(repo, cache, nil)
	userID := uuid.New()
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	addRow(repo, userID, now, false)
	addRow(repo, userID, now, false)
	addRow(repo, userID, now, true)

	count, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, repo.countCalls)

	// Second read is served from cache.
	count, err = svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, repo.countCalls)
}

func TestUnreadCount_WorksWithoutCache(t *testing.T) {
	repo := &fakeLogRepo{}
	svc := NewService(repo, nil, nil)
	userID := uuid.New()
	addRow(repo, userID, time.Now(), false)

	count, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkAsRead_OwnershipEnforced(t *testing.T) {
	repo := &fakeLogRepo{}
	cache := newFakeUnreadCache()
	svc := NewService(repo, cache, nil)
	owner := uuid.New()
	stranger := uuid.New()
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	row := addRow(repo, owner, now, false)

	// Foreign rows and missing rows are both forbidden.
	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), stranger, row.ID), shared.ErrForbidden)
	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), owner, uuid.New()), shared.ErrForbidden)

	require.NoError(t, svc.MarkAsRead(context.Background(), owner, row.ID))
	count, err := svc.UnreadCount(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.GreaterOrEqual(t, cache.invalidated, 1)
}

func TestMarkAllAsRead(t *testing.T) {
	repo := &fakeLogRepo{}
	svc := NewService(repo, nil, nil)
	userID := uuid.New()
	other := uuid.New()
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	addRow(repo, userID, now, false)
	addRow(repo, userID, now, false)
	foreign := addRow(repo, other, now, false)

	require.NoError(t, svc.MarkAllAsRead(context.Background(), userID))

	count, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := repo.GetByID(context.Background(), foreign.ID)
	require.NoError(t, err)
	assert.False(t, got.Read, "other users' rows stay untouched")

	// No unread rows left: still succeeds.
	assert.NoError(t, svc.MarkAllAsRead(context.Background(), userID))
}
