// Package jobs contains the scheduled jobs of the notification engine.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/application/dispatch"
	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/preference"
	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/pkg/clock"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENGAGEMENT REMINDER JOB
// ══════════════════════════════════════════════════════════════════════════════

// ReminderDispatcher delivers one reminder through the notification
// pipeline. The pipeline applies its own preference and quiet-hours gates.
type ReminderDispatcher interface {
	SendToUser(ctx context.Context, userID uuid.UUID, msg dispatch.Message) error
}

// PreferenceSource exposes per-user reminder lead times.
type PreferenceSource interface {
	GetOrDefault(ctx context.Context, userID uuid.UUID) (*preference.Preference, error)
}

// ReminderLogSource checks whether a reminder was already written for a
// user and engagement.
type ReminderLogSource interface {
	ExistsForRelated(ctx context.Context, userID uuid.UUID, category notification.Category, relatedType string, relatedID uuid.UUID) (bool, error)
}

// ReminderConfig contains configuration for the reminder job.
type ReminderConfig struct {
	// Lookahead bounds how far into the future the sweep scans. It must
	// cover the largest reminder lead a user may configure.
	Lookahead time.Duration
}

// DefaultReminderConfig returns sensible defaults.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Lookahead: 3 * time.Hour,
	}
}

// ReminderJob sends "starting soon" reminders for engagements saved in
// personal schedules. Each sweep scans upcoming engagements, finds the
// users who saved them, and sends one reminder per user and engagement
// once the user's lead window opens. The delivery log is the dedupe
// record, so restarts never double-send.
type ReminderJob struct {
	schedules  schedule.Reader
	prefs      PreferenceSource
	logs       ReminderLogSource
	dispatcher ReminderDispatcher
	clock      clock.Clock
	config     ReminderConfig
	logger     *slog.Logger
}

// NewReminderJob creates the reminder sweep job.
func NewReminderJob(
	schedules schedule.Reader,
	prefs PreferenceSource,
	logs ReminderLogSource,
	dispatcher ReminderDispatcher,
	clk clock.Clock,
	config ReminderConfig,
	logger *slog.Logger,
) *ReminderJob {
	if clk == nil {
		clk = clock.System{}
	}
	if config.Lookahead <= 0 {
		config.Lookahead = DefaultReminderConfig().Lookahead
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderJob{
		schedules:  schedules,
		prefs:      prefs,
		logs:       logs,
		dispatcher: dispatcher,
		clock:      clk,
		config:     config,
		logger:     logger.With("job", "engagement_reminders"),
	}
}

// Name implements scheduler.Job.
func (j *ReminderJob) Name() string {
	return "engagement_reminders"
}

// Description implements scheduler.Job.
func (j *ReminderJob) Description() string {
	return "Sends reminders for saved engagements that start soon"
}

// Run implements scheduler.Job.
func (j *ReminderJob) Run(ctx context.Context) error {
	now := j.clock.Now()

	engagements, err := j.schedules.ListEngagementsStartingBetween(ctx, now, now.Add(j.config.Lookahead))
	if err != nil {
		return fmt.Errorf("reminders: list upcoming engagements: %w", err)
	}

	var sent, skipped, failed int
	for _, engagement := range engagements {
		s, k, f := j.remindForEngagement(ctx, engagement, now)
		sent += s
		skipped += k
		failed += f
	}

	if sent > 0 || failed > 0 {
		j.logger.Info("reminder sweep finished",
			"engagements", len(engagements),
			"sent", sent,
			"skipped", skipped,
			"failed", failed,
		)
	}

	return nil
}

// remindForEngagement fans one upcoming engagement out to every user who
// saved it. A failure for one user never blocks the rest.
func (j *ReminderJob) remindForEngagement(ctx context.Context, engagement *schedule.Engagement, now time.Time) (sent, skipped, failed int) {
	schedules, err := j.schedules.ListSchedulesByEngagement(ctx, engagement.ID)
	if err != nil {
		j.logger.Error("failed to resolve schedules for engagement",
			"engagement_id", engagement.ID, "error", err)
		return 0, 0, 1
	}

	seen := make(map[uuid.UUID]struct{}, len(schedules))
	for _, ps := range schedules {
		if _, ok := seen[ps.UserID]; ok {
			continue
		}
		seen[ps.UserID] = struct{}{}

		ok, err := j.remindUser(ctx, ps.UserID, engagement, now)
		switch {
		case err != nil:
			failed++
			j.logger.Warn("reminder failed",
				"user_id", ps.UserID, "engagement_id", engagement.ID, "error", err)
		case ok:
			sent++
		default:
			skipped++
		}
	}

	return sent, skipped, failed
}

// remindUser sends one reminder if the user's lead window is open and no
// reminder was logged yet. Returns true when a reminder was dispatched.
func (j *ReminderJob) remindUser(ctx context.Context, userID uuid.UUID, engagement *schedule.Engagement, now time.Time) (bool, error) {
	pref, err := j.prefs.GetOrDefault(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load preferences: %w", err)
	}

	lead := time.Duration(pref.ReminderLeadMinutes) * time.Minute
	if engagement.StartsAt.Sub(now) > lead {
		// Too early for this user. A later sweep picks it up.
		return false, nil
	}

	exists, err := j.logs.ExistsForRelated(ctx, userID, notification.CategoryReminder, notification.RelatedEngagement, engagement.ID)
	if err != nil {
		return false, fmt.Errorf("check reminder log: %w", err)
	}
	if exists {
		return false, nil
	}

	relatedID := engagement.ID
	msg := dispatch.Message{
		Category:    notification.CategoryReminder,
		Title:       fmt.Sprintf("Starting soon: %s", engagement.ArtistName),
		Body:        reminderBody(engagement),
		RelatedType: notification.RelatedEngagement,
		RelatedID:   &relatedID,
	}

	if err := j.dispatcher.SendToUser(ctx, userID, msg); err != nil {
		return false, err
	}
	return true, nil
}

// reminderBody formats the reminder text. Times are rendered in UTC; the
// client localizes using the attached engagement reference.
func reminderBody(engagement *schedule.Engagement) string {
	return fmt.Sprintf("%s plays %s at %s",
		engagement.ArtistName,
		engagement.StageName,
		engagement.StartsAt.UTC().Format("15:04"),
	)
}
