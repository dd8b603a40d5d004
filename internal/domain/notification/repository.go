package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/shared"
)

// LogRepository persists the append-only delivery log.
type LogRepository interface {
	// Create appends one delivery attempt row.
	Create(ctx context.Context, log *Log) error

	// GetByID returns a row by ID. Returns shared.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Log, error)

	// ListByUser returns the user's rows ordered by sent time, newest
	// first.
	ListByUser(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*Log, error)

	// CountUnread returns the number of the user's unread rows.
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)

	// MarkRead flips the read flag on one row.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flips the read flag on every unread row of the user.
	// Zero affected rows is not an error.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error

	// ExistsForRelated reports whether the user already has a row of the
	// given category pointing at the related entity. Used to dedupe
	// engagement reminders.
	ExistsForRelated(ctx context.Context, userID uuid.UUID, category Category, relatedType string, relatedID uuid.UUID) (bool, error)
}
