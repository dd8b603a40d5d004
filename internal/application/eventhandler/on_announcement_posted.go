package eventhandler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/shared"
)

// AnnouncementDispatcher is the slice of the dispatcher the handler needs.
type AnnouncementDispatcher interface {
	SendEditionAnnouncement(ctx context.Context, editionID uuid.UUID, title, body string) error
}

// OnAnnouncementPostedHandler broadcasts organizer announcements to the
// edition's schedule owners.
type OnAnnouncementPostedHandler struct {
	dispatcher AnnouncementDispatcher
	logger     *slog.Logger
}

// NewOnAnnouncementPostedHandler creates the handler.
func NewOnAnnouncementPostedHandler(dispatcher AnnouncementDispatcher, logger *slog.Logger) *OnAnnouncementPostedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAnnouncementPostedHandler{
		dispatcher: dispatcher,
		logger:     logger.With("handler", "on_announcement_posted"),
	}
}

// Handle implements shared.EventHandler (as a method value).
func (h *OnAnnouncementPostedHandler) Handle(event shared.Event) error {
	postedEvent, ok := event.(shared.AnnouncementPostedEvent)
	if !ok {
		h.logger.Warn("received non-AnnouncementPostedEvent", "event_type", event.EventType())
		return nil
	}

	editionID, err := uuid.Parse(postedEvent.EditionID)
	if err != nil {
		h.logger.Error("malformed announcement event", "edition_id", postedEvent.EditionID, "error", err)
		return nil
	}

	h.logger.Info("processing announcement", "edition_id", editionID, "title", postedEvent.Title)

	if err := h.dispatcher.SendEditionAnnouncement(context.Background(), editionID, postedEvent.Title, postedEvent.Body); err != nil {
		h.logger.Error("announcement dispatch failed", "edition_id", editionID, "error", err)
		return err
	}
	return nil
}
