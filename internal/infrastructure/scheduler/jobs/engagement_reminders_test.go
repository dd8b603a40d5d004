package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festival-hub/internal/application/dispatch"
	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/preference"
	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/internal/domain/shared"
	"github.com/festhub/festival-hub/pkg/clock"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeScheduleReader struct {
	engagements  []*schedule.Engagement
	byEngagement map[uuid.UUID][]*schedule.PersonalSchedule
}

func (f *fakeScheduleReader) ListSchedulesByEdition(ctx context.Context, editionID uuid.UUID, page shared.Pagination) ([]*schedule.PersonalSchedule, error) {
	return nil, nil
}

func (f *fakeScheduleReader) ListSchedulesByEngagement(ctx context.Context, engagementID uuid.UUID) ([]*schedule.PersonalSchedule, error) {
	return f.byEngagement[engagementID], nil
}

func (f *fakeScheduleReader) ListEngagementsStartingBetween(ctx context.Context, from, to time.Time) ([]*schedule.Engagement, error) {
	var out []*schedule.Engagement
	for _, e := range f.engagements {
		if !e.StartsAt.Before(from) && e.StartsAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePrefSource struct {
	prefs map[uuid.UUID]*preference.Preference
}

func (f *fakePrefSource) GetOrDefault(ctx context.Context, userID uuid.UUID) (*preference.Preference, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return preference.Default(userID), nil
}

type fakeReminderLog struct {
	existing map[uuid.UUID]map[uuid.UUID]bool // userID -> engagementID
}

func (f *fakeReminderLog) ExistsForRelated(ctx context.Context, userID uuid.UUID, category notification.Category, relatedType string, relatedID uuid.UUID) (bool, error) {
	return f.existing[userID][relatedID], nil
}

type sentReminder struct {
	userID uuid.UUID
	msg    dispatch.Message
}

type recordingDispatcher struct {
	sent    []sentReminder
	failing map[uuid.UUID]error
}

func (d *recordingDispatcher) SendToUser(ctx context.Context, userID uuid.UUID, msg dispatch.Message) error {
	if err := d.failing[userID]; err != nil {
		return err
	}
	d.sent = append(d.sent, sentReminder{userID: userID, msg: msg})
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURE
// ══════════════════════════════════════════════════════════════════════════════

type reminderFixture struct {
	job        *ReminderJob
	reader     *fakeScheduleReader
	prefs      *fakePrefSource
	logs       *fakeReminderLog
	dispatcher *recordingDispatcher
	clock      *clock.Fixed
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	f := &reminderFixture{
		reader: &fakeScheduleReader{
			byEngagement: make(map[uuid.UUID][]*schedule.PersonalSchedule),
		},
		prefs:      &fakePrefSource{prefs: make(map[uuid.UUID]*preference.Preference)},
		logs:       &fakeReminderLog{existing: make(map[uuid.UUID]map[uuid.UUID]bool)},
		dispatcher: &recordingDispatcher{failing: make(map[uuid.UUID]error)},
		clock:      clock.NewFixed(time.Date(2026, 7, 18, 18, 0, 0, 0, time.UTC)),
	}
	f.job = NewReminderJob(f.reader, f.prefs, f.logs, f.dispatcher, f.clock, DefaultReminderConfig(), nil)
	return f
}

// addEngagement registers an engagement starting at now+in, saved by the
// given users.
func (f *reminderFixture) addEngagement(artist string, in time.Duration, userIDs ...uuid.UUID) *schedule.Engagement {
	e := &schedule.Engagement{
		ID:         uuid.New(),
		EditionID:  uuid.New(),
		ArtistName: artist,
		StageName:  "Main Stage",
		StartsAt:   f.clock.Now().Add(in),
		EndsAt:     f.clock.Now().Add(in + time.Hour),
	}
	f.reader.engagements = append(f.reader.engagements, e)
	for _, userID := range userIDs {
		f.reader.byEngagement[e.ID] = append(f.reader.byEngagement[e.ID], &schedule.PersonalSchedule{
			ID:        uuid.New(),
			UserID:    userID,
			EditionID: e.EditionID,
		})
	}
	return e
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestReminderJob_SendsWithinLeadWindow(t *testing.T) {
	f := newReminderFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	e := f.addEngagement("The National", 20*time.Minute, alice, bob)

	require.NoError(t, f.job.Run(context.Background()))

	require.Len(t, f.dispatcher.sent, 2)
	first := f.dispatcher.sent[0]
	assert.Equal(t, notification.CategoryReminder, first.msg.Category)
	assert.Equal(t, "Starting soon: The National", first.msg.Title)
	assert.Equal(t, "The National plays Main Stage at 18:20", first.msg.Body)
	assert.Equal(t, notification.RelatedEngagement, first.msg.RelatedType)
	require.NotNil(t, first.msg.RelatedID)
	assert.Equal(t, e.ID, *first.msg.RelatedID)
}

func TestReminderJob_TooEarlyForDefaultLead(t *testing.T) {
	f := newReminderFixture(t)
	f.addEngagement("Arooj Aftab", 2*time.Hour, uuid.New())

	require.NoError(t, f.job.Run(context.Background()))

	assert.Empty(t, f.dispatcher.sent, "default 30 minute lead must not fire two hours out")
}

func TestReminderJob_HonorsCustomLeadTime(t *testing.T) {
	f := newReminderFixture(t)
	eager := uuid.New()
	casual := uuid.New()
	f.addEngagement("Bonobo", 90*time.Minute, eager, casual)

	pref := preference.Default(eager)
	pref.ReminderLeadMinutes = 120
	f.prefs.prefs[eager] = pref

	require.NoError(t, f.job.Run(context.Background()))

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, eager, f.dispatcher.sent[0].userID)
}

func TestReminderJob_SkipsAlreadyReminded(t *testing.T) {
	f := newReminderFixture(t)
	userID := uuid.New()
	e := f.addEngagement("Khruangbin", 10*time.Minute, userID)
	f.logs.existing[userID] = map[uuid.UUID]bool{e.ID: true}

	require.NoError(t, f.job.Run(context.Background()))

	assert.Empty(t, f.dispatcher.sent)
}

func TestReminderJob_DeduplicatesUserWithSeveralSchedules(t *testing.T) {
	f := newReminderFixture(t)
	userID := uuid.New()
	// Same user saved the engagement in two personal schedules.
	f.addEngagement("Caribou", 15*time.Minute, userID, userID)

	require.NoError(t, f.job.Run(context.Background()))

	assert.Len(t, f.dispatcher.sent, 1)
}

func TestReminderJob_FailureDoesNotBlockOthers(t *testing.T) {
	f := newReminderFixture(t)
	broken := uuid.New()
	healthy := uuid.New()
	f.addEngagement("Jamie xx", 25*time.Minute, broken, healthy)
	f.dispatcher.failing[broken] = errors.New("gateway down")

	require.NoError(t, f.job.Run(context.Background()))

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, healthy, f.dispatcher.sent[0].userID)
}
