package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/device"
	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/preference"
	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/pkg/clock"
)

// PreferenceSource serves effective (defaulted) preferences.
type PreferenceSource interface {
	GetOrDefault(ctx context.Context, userID uuid.UUID) (*preference.Preference, error)
}

// DeviceSource lists a user's active push devices.
type DeviceSource interface {
	ActiveDevices(ctx context.Context, userID uuid.UUID) ([]*device.Token, error)
}

// UnreadInvalidator drops a user's cached unread count after new log rows.
// Optional; a nil invalidator is skipped.
type UnreadInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Message is the content of one notification before fan-out.
type Message struct {
	Category notification.Category
	Title    string
	Body     string

	// RelatedType/RelatedID optionally tie the log rows to a programme
	// entity.
	RelatedType string
	RelatedID   *uuid.UUID
}

// Dispatcher runs the delivery pipeline for one user at a time: preference
// gate, category gate, quiet hours, device fan-out, one log row per attempt.
type Dispatcher struct {
	prefs    PreferenceSource
	devices  DeviceSource
	provider notification.PushProvider
	logs     notification.LogRepository
	resolver *Resolver
	unread   UnreadInvalidator
	clock    clock.Clock
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. unread may be nil.
func NewDispatcher(
	prefs PreferenceSource,
	devices DeviceSource,
	provider notification.PushProvider,
	logs notification.LogRepository,
	resolver *Resolver,
	unread UnreadInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *Dispatcher {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		prefs:    prefs,
		devices:  devices,
		provider: provider,
		logs:     logs,
		resolver: resolver,
		unread:   unread,
		clock:    clk,
		logger:   logger.With("service", "dispatch"),
	}
}

// SendToUser runs the full pipeline for one user. Suppression by preference
// or quiet hours is silent: nothing is sent and nothing is logged. Failed
// provider attempts are recorded as log rows and never returned as errors;
// only infrastructure failures (preference or device lookups, log writes)
// propagate.
func (d *Dispatcher) SendToUser(ctx context.Context, userID uuid.UUID, msg Message) error {
	pref, err := d.prefs.GetOrDefault(ctx, userID)
	if err != nil {
		return fmt.Errorf("dispatch: load preferences: %w", err)
	}

	if !pref.PushEnabled {
		return nil
	}
	if !msg.Category.EnabledIn(pref) {
		return nil
	}

	now := d.clock.Now()
	if pref.IsQuietAt(now) {
		d.logger.Debug("suppressed by quiet hours", "user_id", userID, "category", msg.Category)
		return nil
	}

	tokens, err := d.devices.ActiveDevices(ctx, userID)
	if err != nil {
		return fmt.Errorf("dispatch: load devices: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	push := notification.PushMessage{
		Title:    msg.Title,
		Body:     msg.Body,
		Category: msg.Category,
	}

	for _, token := range tokens {
		d.sendToDevice(ctx, token, msg, push, now)
	}

	if d.unread != nil {
		if err := d.unread.Invalidate(ctx, userID); err != nil {
			d.logger.Warn("failed to invalidate unread cache", "user_id", userID, "error", err)
		}
	}
	return nil
}

// sendToDevice attempts one delivery and records the outcome. Provider and
// log-write failures are contained here so one device never blocks another.
func (d *Dispatcher) sendToDevice(ctx context.Context, token *device.Token, msg Message, push notification.PushMessage, now time.Time) {
	var row *notification.Log
	if err := d.provider.Send(ctx, token.Platform, token.Value, push); err != nil {
		d.logger.Warn("push delivery failed",
			"user_id", token.UserID,
			"device_id", token.ID,
			"platform", token.Platform,
			"error", err,
		)
		row = notification.NewFailed(token.UserID, token.ID, msg.Category, msg.Title, msg.Body, now, err)
	} else {
		row = notification.NewDelivered(token.UserID, token.ID, msg.Category, msg.Title, msg.Body, now)
	}

	if msg.RelatedID != nil {
		row.WithRelated(msg.RelatedType, *msg.RelatedID)
	}

	if err := d.logs.Create(ctx, row); err != nil {
		d.logger.Error("failed to record delivery log",
			"user_id", token.UserID,
			"device_id", token.ID,
			"error", err,
		)
	}
}

// SendToUsers fans the message out to each distinct user. One user's failure
// is logged and does not stop the others.
func (d *Dispatcher) SendToUsers(ctx context.Context, userIDs []uuid.UUID, msg Message) {
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}

		if err := d.SendToUser(ctx, userID, msg); err != nil {
			d.logger.Error("dispatch to user failed", "user_id", userID, "error", err)
		}
	}
}

// SendScheduleChange notifies everyone affected by a programme change.
// Changes naming an engagement go to the schedules containing it; changes
// without one go to every schedule owner of the edition. No recipients means
// a complete no-op.
func (d *Dispatcher) SendScheduleChange(ctx context.Context, change schedule.Change) error {
	var (
		users []uuid.UUID
		err   error
	)
	if change.EngagementID != nil {
		users, err = d.resolver.ForEngagementChange(ctx, *change.EngagementID)
	} else {
		users, err = d.resolver.ForEditionBroadcast(ctx, change.EditionID)
	}
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	msg := scheduleChangeMessage(change)
	d.SendToUsers(ctx, users, msg)
	return nil
}

// SendEditionAnnouncement broadcasts an organizer announcement to the
// edition's schedule owners.
func (d *Dispatcher) SendEditionAnnouncement(ctx context.Context, editionID uuid.UUID, title, body string) error {
	users, err := d.resolver.ForEditionBroadcast(ctx, editionID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	relatedID := editionID
	d.SendToUsers(ctx, users, Message{
		Category:    notification.CategoryAnnouncement,
		Title:       title,
		Body:        body,
		RelatedType: notification.RelatedEdition,
		RelatedID:   &relatedID,
	})
	return nil
}

// scheduleChangeMessage composes the push content from a change payload. An
// organizer-provided message overrides the generated body.
func scheduleChangeMessage(change schedule.Change) Message {
	msg := Message{Category: notification.CategoryScheduleChange}

	if change.EngagementID != nil {
		msg.RelatedType = notification.RelatedEngagement
		msg.RelatedID = change.EngagementID
	} else {
		editionID := change.EditionID
		msg.RelatedType = notification.RelatedEdition
		msg.RelatedID = &editionID
	}

	if change.ArtistName != "" {
		msg.Title = fmt.Sprintf("Schedule change: %s", change.ArtistName)
	} else {
		msg.Title = "Schedule update"
	}

	switch {
	case change.Message != "":
		msg.Body = change.Message
	case change.OldStartsAt != nil && change.NewStartsAt != nil:
		msg.Body = fmt.Sprintf("%s on %s moved from %s to %s",
			change.ArtistName,
			change.StageName,
			change.OldStartsAt.UTC().Format("Mon 15:04"),
			change.NewStartsAt.UTC().Format("Mon 15:04"),
		)
	default:
		msg.Body = "The festival programme has been updated."
	}
	return msg
}
