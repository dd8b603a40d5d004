package dispatch

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festival-hub/internal/domain/device"
	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/preference"
	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/internal/domain/shared"
	"github.com/festhub/festival-hub/pkg/clock"
)

type fakePrefSource struct {
	prefs map[uuid.UUID]*preference.Preference
	err   error
}

func (f *fakePrefSource) GetOrDefault(_ context.Context, userID uuid.UUID) (*preference.Preference, error) {
	if f.err != nil {
		return nil, f.err
	}
	if pref, ok := f.prefs[userID]; ok {
		copied := *pref
		return &copied, nil
	}
	return preference.Default(userID), nil
}

type fakeDeviceSource struct {
	devices map[uuid.UUID][]*device.Token
}

func (f *fakeDeviceSource) ActiveDevices(_ context.Context, userID uuid.UUID) ([]*device.Token, error) {
	return f.devices[userID], nil
}

type sentPush struct {
	platform string
	token    string
	msg      notification.PushMessage
}

// fakeProvider records sends and fails for token values listed in failing.
type fakeProvider struct {
	sent    []sentPush
	failing map[string]error
}

func (f *fakeProvider) Send(_ context.Context, platform, token string, msg notification.PushMessage) error {
	f.sent = append(f.sent, sentPush{platform: platform, token: token, msg: msg})
	if err, ok := f.failing[token]; ok {
		return err
	}
	return nil
}

type fakeLogRepo struct {
	rows []*notification.Log
	err  error
}

func (f *fakeLogRepo) Create(_ context.Context, row *notification.Log) error {
	if f.err != nil {
		return f.err
	}
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
	for _, row := range f.rows {
		if row.UserID == userID {
			row.Read = true
		}
	}
	return nil
}

func (f *fakeLogRepo) ExistsForRelated(_ context.Context, userID uuid.UUID, category notification.Category, relatedType string, relatedID uuid.UUID) (bool, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.Category == category &&
			row.RelatedType == relatedType && row.RelatedID != nil && *row.RelatedID == relatedID {
			return true, nil
		}
	}
	return false, nil
}

type dispatchFixture struct {
	dispatcher *Dispatcher
	prefs      *fakePrefSource
	devices    *fakeDeviceSource
	provider   *fakeProvider
	logs       *fakeLogRepo
	reader     *fakeScheduleReader
	clock      *clock.Fixed
}

func newFixture(t *testing.T) *dispatchFixture {
	t.Helper()
	f := &dispatchFixture{
		prefs:    &fakePrefSource{prefs: make(map[uuid.UUID]*preference.Preference)},
		devices:  &fakeDeviceSource{devices: make(map[uuid.UUID][]*device.Token)},
		provider: &fakeProvider{failing: make(map[string]error)},
		logs:     &fakeLogRepo{},
		reader:   newFakeScheduleReader(),
		clock:    clock.NewFixed(time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)),
	}
	f.dispatcher = NewDispatcher(
		f.prefs, f.devices, f.provider, f.logs,
		NewResolver(f.reader, 0), nil, f.clock, nil,
	)
	return f
}

func (f *dispatchFixture) addDevice(userID uuid.UUID, tokenValue, platform string) *device.Token {
	token := &device.Token{
		ID:       uuid.New(),
		UserID:   userID,
		Value:    tokenValue,
		Platform: platform,
		Active:   true,
	}
	f.devices.devices[userID] = append(f.devices.devices[userID], token)
	return token
}

func announcement() Message {
	return Message{
		Category: notification.CategoryAnnouncement,
		Title:    "Gates open",
		Body:     "Doors at noon.",
	}
}

func TestSendToUser_FansOutToEveryActiveDevice(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.addDevice(userID, "tok-ios", "ios")
	f.addDevice(userID, "tok-android", "android")

	require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, announcement()))

	assert.Len(t, f.provider.sent, 2)
	require.Len(t, f.logs.rows, 2)
	for _, row := range f.logs.rows {
		assert.True(t, row.Delivered)
		assert.Equal(t, notification.CategoryAnnouncement, row.Category)
		assert.Equal(t, f.clock.Now(), row.SentAt)
		assert.False(t, row.Read)
	}
}

func TestSendToUser_PushDisabledSendsAndLogsNothing(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.addDevice(userID, "tok", "ios")

	pref := preference.Default(userID)
	pref.PushEnabled = false
	f.prefs.prefs[userID] = pref

	require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, announcement()))
	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.rows)
}

func TestSendToUser_CategoryGates(t *testing.T) {
	tests := []struct {
		name     string
		category notification.Category
		disable  func(p *preference.Preference)
	}{
		{"schedule_change", notification.CategoryScheduleChange, func(p *preference.Preference) { p.ScheduleChangesEnabled = false }},
		{"reminder", notification.CategoryReminder, func(p *preference.Preference) { p.RemindersEnabled = false }},
		{"announcement", notification.CategoryAnnouncement, func(p *preference.Preference) { p.AnnouncementsEnabled = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			userID := uuid.New()
			f.addDevice(userID, "tok", "ios")

			pref := preference.Default(userID)
			tt.disable(pref)
			f.prefs.prefs[userID] = pref

			msg := announcement()
			msg.Category = tt.category
			require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, msg))
			assert.Empty(t, f.provider.sent, "disabled category must not send")

			// Every other category still goes through.
			for _, other := range []notification.Category{
				notification.CategoryScheduleChange,
				notification.CategoryReminder,
				notification.CategoryAnnouncement,
			} {
				if other == tt.category {
					continue
				}
				msg.Category = other
				require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, msg))
			}
			assert.Len(t, f.provider.sent, 2)
		})
	}
}

func TestSendToUser_UnknownCategoryPassesGate(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.addDevice(userID, "tok", "ios")

	pref := preference.Default(userID)
	pref.ScheduleChangesEnabled = false
	pref.RemindersEnabled = false
	pref.AnnouncementsEnabled = false
	f.prefs.prefs[userID] = pref

	msg := announcement()
	msg.Category = notification.Category("lost_and_found")
	require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, msg))
	assert.Len(t, f.provider.sent, 1)
}

func TestSendToUser_QuietHoursSuppressEverything(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.addDevice(userID, "tok", "ios")

	pref := preference.Default(userID)
	start, err := preference.ParseTimeOfDay("22:00")
	require.NoError(t, err)
	end, err := preference.ParseTimeOfDay("08:00")
	require.NoError(t, err)
	pref.QuietHoursStart = &start
	pref.QuietHoursEnd = &end
	f.prefs.prefs[userID] = pref

	// 23:30 UTC is inside the window.
	f.clock.Set(time.Date(2026, 7, 10, 23, 30, 0, 0, time.UTC))
	require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, announcement()))
	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.rows)

	// 08:00 UTC is the exclusive end: delivery resumes.
	f.clock.Set(time.Date(2026, 7, 11, 8, 0, 0, 0, time.UTC))
	require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, announcement()))
	assert.Len(t, f.provider.sent, 1)
}

func TestSendToUser_NoDevicesIsNoOp(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.dispatcher.SendToUser(context.Background(), uuid.New(), announcement()))
	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.rows)
}

func TestSendToUser_DeviceFailureIsIsolatedAndLogged(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.addDevice(userID, "tok-dead", "ios")
	f.addDevice(userID, "tok-live", "android")
	f.provider.failing["tok-dead"] = errors.New("invalid registration token")

	require.NoError(t, f.dispatcher.SendToUser(context.Background(), userID, announcement()))

	assert.Len(t, f.provider.sent, 2, "failure on one device must not stop the next")
	require.Len(t, f.logs.rows, 2)

	var delivered, failed int
	for _, row := range f.logs.rows {
		if row.Delivered {
			delivered++
			assert.Empty(t, row.ErrorMessage)
		} else {
			failed++
			assert.Contains(t, row.ErrorMessage, "invalid registration token")
		}
	}
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, failed)
}

func TestSendToUser_PreferenceLookupFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.prefs.err = errors.New("connection refused")

	err := f.dispatcher.SendToUser(context.Background(), uuid.New(), announcement())
	assert.Error(t, err)
}

func TestSendToUsers_DedupesIDs(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.addDevice(userID, "tok", "ios")

	f.dispatcher.SendToUsers(context.Background(), []uuid.UUID{userID, userID, userID}, announcement())
	assert.Len(t, f.provider.sent, 1)
}

func TestSendToUsers_OneUserFailureDoesNotStopOthers(t *testing.T) {
	f := newFixture(t)
	healthy := uuid.New()
	blocked := uuid.New()
	f.addDevice(healthy, "tok-ok", "ios")
	f.addDevice(blocked, "tok-blocked", "ios")

	pref := preference.Default(blocked)
	pref.PushEnabled = false
	f.prefs.prefs[blocked] = pref

	f.dispatcher.SendToUsers(context.Background(), []uuid.UUID{blocked, healthy}, announcement())
	require.Len(t, f.provider.sent, 1)
	assert.Equal(t, "tok-ok", f.provider.sent[0].token)
}

func TestSendScheduleChange_EngagementRouting(t *testing.T) {
	f := newFixture(t)
	editionID := uuid.New()
	engagementID := uuid.New()
	fan := uuid.New()
	f.addDevice(fan, "tok-fan", "ios")
	f.reader.byEngagement[engagementID] = []*schedule.PersonalSchedule{sched(fan, editionID)}

	oldStart := time.Date(2026, 7, 11, 20, 0, 0, 0, time.UTC)
	newStart := time.Date(2026, 7, 11, 22, 0, 0, 0, time.UTC)
	err := f.dispatcher.SendScheduleChange(context.Background(), schedule.Change{
		EditionID:    editionID,
		EngagementID: &engagementID,
		ArtistName:   "The Midnight Owls",
		StageName:    "Main Stage",
		OldStartsAt:  &oldStart,
		NewStartsAt:  &newStart,
	})
	require.NoError(t, err)

	require.Len(t, f.provider.sent, 1)
	assert.Equal(t, notification.CategoryScheduleChange, f.provider.sent[0].msg.Category)
	assert.Contains(t, f.provider.sent[0].msg.Title, "The Midnight Owls")
	assert.Contains(t, f.provider.sent[0].msg.Body, "Main Stage")

	require.Len(t, f.logs.rows, 1)
	assert.Equal(t, notification.RelatedEngagement, f.logs.rows[0].RelatedType)
	require.NotNil(t, f.logs.rows[0].RelatedID)
	assert.Equal(t, engagementID, *f.logs.rows[0].RelatedID)
}

func TestSendScheduleChange_EditionBroadcastWhenNoEngagement(t *testing.T) {
	f := newFixture(t)
	editionID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()
	f.addDevice(userA, "tok-a", "ios")
	f.addDevice(userB, "tok-b", "android")
	f.reader.byEdition[editionID] = []*schedule.PersonalSchedule{
		sched(userA, editionID),
		sched(userB, editionID),
	}

	err := f.dispatcher.SendScheduleChange(context.Background(), schedule.Change{
		EditionID: editionID,
		Message:   "Festival closes two hours early today.",
	})
	require.NoError(t, err)
	assert.Len(t, f.provider.sent, 2)
	for _, push := range f.provider.sent {
		assert.Equal(t, "Festival closes two hours early today.", push.msg.Body)
	}
}

func TestSendScheduleChange_NoRecipientsIsNoOp(t *testing.T) {
	f := newFixture(t)

	err := f.dispatcher.SendScheduleChange(context.Background(), schedule.Change{EditionID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, f.provider.sent)
	assert.Empty(t, f.logs.rows)
}

func TestSendEditionAnnouncement(t *testing.T) {
	f := newFixture(t)
	editionID := uuid.New()
	userID := uuid.New()
	f.addDevice(userID, "tok", "web")
	f.reader.byEdition[editionID] = []*schedule.PersonalSchedule{sched(userID, editionID)}

	err := f.dispatcher.SendEditionAnnouncement(context.Background(), editionID, "Lineup drop", "Secret act revealed at 18:00.")
	require.NoError(t, err)

	require.Len(t, f.logs.rows, 1)
	assert.Equal(t, notification.CategoryAnnouncement, f.logs.rows[0].Category)
	assert.Equal(t, notification.RelatedEdition, f.logs.rows[0].RelatedType)
}
