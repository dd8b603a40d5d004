// Package eventhandler contains domain event handlers. They are the reactive
// part of the system: domain emitters publish events and the handlers turn
// them into side effects such as push dispatch, without the emitters ever
// importing the notification engine.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// ScheduleChangeDispatcher is the slice of the dispatcher the handler needs.
type ScheduleChangeDispatcher interface {
	SendScheduleChange(ctx context.Context, change schedule.Change) error
}

// OnScheduleChangedHandler forwards programme changes to the dispatcher.
type OnScheduleChangedHandler struct {
	dispatcher ScheduleChangeDispatcher
	logger     *slog.Logger
}

// NewOnScheduleChangedHandler creates the handler.
func NewOnScheduleChangedHandler(dispatcher ScheduleChangeDispatcher, logger *slog.Logger) *OnScheduleChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnScheduleChangedHandler{
		dispatcher: dispatcher,
		logger:     logger.With("handler", "on_schedule_changed"),
	}
}

// Handle implements shared.EventHandler (as a method value).
func (h *OnScheduleChangedHandler) Handle(event shared.Event) error {
	changeEvent, ok := event.(shared.ScheduleChangedEvent)
	if !ok {
		h.logger.Warn("received non-ScheduleChangedEvent", "event_type", event.EventType())
		return nil
	}

	change, err := changeFromEvent(changeEvent)
	if err != nil {
		h.logger.Error("malformed schedule change event", "error", err)
		return nil // a bad payload is dropped, not retried
	}

	h.logger.Info("processing schedule change",
		"edition_id", change.EditionID,
		"engagement_id", changeEvent.EngagementID,
		"artist", change.ArtistName,
	)

	if err := h.dispatcher.SendScheduleChange(context.Background(), change); err != nil {
		h.logger.Error("schedule change dispatch failed", "edition_id", change.EditionID, "error", err)
		return err
	}
	return nil
}

func changeFromEvent(event shared.ScheduleChangedEvent) (schedule.Change, error) {
	editionID, err := uuid.Parse(event.EditionID)
	if err != nil {
		return schedule.Change{}, err
	}

	change := schedule.Change{
		EditionID:   editionID,
		ArtistName:  event.ArtistName,
		StageName:   event.StageName,
		OldStartsAt: event.OldStartsAt,
		NewStartsAt: event.NewStartsAt,
		Message:     event.Message,
	}
	if event.EngagementID != "" {
		engagementID, err := uuid.Parse(event.EngagementID)
		if err != nil {
			return schedule.Change{}, err
		}
		change.EngagementID = &engagementID
	}
	return change, nil
}
