package notification

import (
	"time"

	"github.com/google/uuid"
)

// Related entity types recorded on a log row.
const (
	RelatedEngagement = "engagement"
	RelatedEdition    = "edition"
)

// Log is one append-only row per device delivery attempt. Failed attempts
// are recorded alongside successful ones; the history surface exposes both.
type Log struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	DeviceID uuid.UUID

	Category Category
	Title    string
	Body     string

	// SentAt is when the delivery attempt was made.
	SentAt time.Time

	// Delivered reports whether the provider accepted the push.
	Delivered bool

	// ErrorMessage holds the provider error text for failed attempts.
	ErrorMessage string

	// RelatedType/RelatedID optionally point at the entity the
	// notification is about (an engagement, an edition).
	RelatedType string
	RelatedID   *uuid.UUID

	// Read is flipped by the user through the history surface.
	Read bool

	CreatedAt time.Time
}

// NewDelivered builds a log row for a successful delivery attempt.
func NewDelivered(userID, deviceID uuid.UUID, category Category, title, body string, sentAt time.Time) *Log {
	return &Log{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  deviceID,
		Category:  category,
		Title:     title,
		Body:      body,
		SentAt:    sentAt,
		Delivered: true,
		CreatedAt: sentAt,
	}
}

// NewFailed builds a log row for a failed delivery attempt.
func NewFailed(userID, deviceID uuid.UUID, category Category, title, body string, sentAt time.Time, sendErr error) *Log {
	l := NewDelivered(userID, deviceID, category, title, body, sentAt)
	l.Delivered = false
	if sendErr != nil {
		l.ErrorMessage = sendErr.Error()
	}
	return l
}

// WithRelated attaches the related entity reference.
func (l *Log) WithRelated(relatedType string, relatedID uuid.UUID) *Log {
	l.RelatedType = relatedType
	l.RelatedID = &relatedID
	return l
}

// IsOwnedBy reports whether the row belongs to the given user.
func (l *Log) IsOwnedBy(userID uuid.UUID) bool {
	return l.UserID == userID
}
