// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Schedule events
	EventScheduleChanged EventType = "schedule.changed"

	// Announcement events
	EventAnnouncementPosted EventType = "announcement.posted"

	// Device events
	EventDeviceRegistered  EventType = "device.registered"
	EventDeviceDeactivated EventType = "device.deactivated"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Schedule Events
// ═══════════════════════════════════════════════════════════════════════════

// ScheduleChangedEvent is emitted when an organizer changes the festival
// programme. EngagementID is empty for edition-wide changes.
type ScheduleChangedEvent struct {
	BaseEvent
	EditionID    string     `json:"edition_id"`
	EngagementID string     `json:"engagement_id,omitempty"`
	ArtistName   string     `json:"artist_name,omitempty"`
	StageName    string     `json:"stage_name,omitempty"`
	OldStartsAt  *time.Time `json:"old_starts_at,omitempty"`
	NewStartsAt  *time.Time `json:"new_starts_at,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// Payload implements Event interface.
func (e ScheduleChangedEvent) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"edition_id":    e.EditionID,
		"engagement_id": e.EngagementID,
		"artist_name":   e.ArtistName,
		"stage_name":    e.StageName,
		"message":       e.Message,
	}
	if e.OldStartsAt != nil {
		payload["old_starts_at"] = e.OldStartsAt.Format(time.RFC3339)
	}
	if e.NewStartsAt != nil {
		payload["new_starts_at"] = e.NewStartsAt.Format(time.RFC3339)
	}
	return payload
}

// NewScheduleChangedEvent creates a new ScheduleChangedEvent.
func NewScheduleChangedEvent(editionID, engagementID, artistName, stageName string) ScheduleChangedEvent {
	return ScheduleChangedEvent{
		BaseEvent:    NewBaseEvent(EventScheduleChanged, editionID),
		EditionID:    editionID,
		EngagementID: engagementID,
		ArtistName:   artistName,
		StageName:    stageName,
	}
}

// WithTimes adds the old and new start times to the event.
func (e ScheduleChangedEvent) WithTimes(oldStart, newStart time.Time) ScheduleChangedEvent {
	e.OldStartsAt = &oldStart
	e.NewStartsAt = &newStart
	return e
}

// WithMessage adds an organizer-provided message to the event.
func (e ScheduleChangedEvent) WithMessage(message string) ScheduleChangedEvent {
	e.Message = message
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Announcement Events
// ═══════════════════════════════════════════════════════════════════════════

// AnnouncementPostedEvent is emitted when an organizer posts an announcement
// for an edition.
type AnnouncementPostedEvent struct {
	BaseEvent
	EditionID string `json:"edition_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Payload implements Event interface.
func (e AnnouncementPostedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"edition_id": e.EditionID,
		"title":      e.Title,
		"body":       e.Body,
	}
}

// NewAnnouncementPostedEvent creates a new AnnouncementPostedEvent.
func NewAnnouncementPostedEvent(editionID, title, body string) AnnouncementPostedEvent {
	return AnnouncementPostedEvent{
		BaseEvent: NewBaseEvent(EventAnnouncementPosted, editionID),
		EditionID: editionID,
		Title:     title,
		Body:      body,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Notification Events
// ═══════════════════════════════════════════════════════════════════════════

// NotificationSentEvent is emitted after a push delivery attempt succeeds.
type NotificationSentEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Category string `json:"category"`
	DeviceID string `json:"device_id"`
}

// Payload implements Event interface.
func (e NotificationSentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"category":  e.Category,
		"device_id": e.DeviceID,
	}
}

// NewNotificationSentEvent creates a new NotificationSentEvent.
func NewNotificationSentEvent(userID, category, deviceID string) NotificationSentEvent {
	return NotificationSentEvent{
		BaseEvent: NewBaseEvent(EventNotificationSent, userID),
		UserID:    userID,
		Category:  category,
		DeviceID:  deviceID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
