// Package history implements the per-user notification history surface:
// listing, unread counts, and read marks over the delivery log.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// UnreadCache caches per-user unread counts. Optional; a nil cache makes
// every count hit storage.
type UnreadCache interface {
	// Get returns the cached count. Returns shared.ErrNotFound on a miss.
	Get(ctx context.Context, userID uuid.UUID) (int, error)
	Set(ctx context.Context, userID uuid.UUID, count int) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Service exposes a user's notification history.
type Service struct {
	logs   notification.LogRepository
	unread UnreadCache
	logger *slog.Logger
}

// NewService creates a history service. unread may be nil.
func NewService(logs notification.LogRepository, unread UnreadCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logs:   logs,
		unread: unread,
		logger: logger.With("service", "history"),
	}
}

// List returns the user's notifications, newest first. Failed delivery
// attempts appear alongside successful ones.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*notification.Log, error) {
	rows, err := s.logs.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return rows, nil
}

// UnreadCount returns the number of unread rows, served from the cache when
// possible. Cache failures fall back to storage.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.unread != nil {
		if count, err := s.unread.Get(ctx, userID); err == nil {
			return count, nil
		} else if !shared.IsNotFound(err) {
			s.logger.Warn("unread cache read failed", "user_id", userID, "error", err)
		}
	}

	count, err := s.logs.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}

	if s.unread != nil {
		if err := s.unread.Set(ctx, userID, count); err != nil {
			s.logger.Warn("unread cache write failed", "user_id", userID, "error", err)
		}
	}
	return count, nil
}

// MarkAsRead marks one of the caller's notifications as read. Rows that do
// not exist and rows owned by someone else both return shared.ErrForbidden.
func (s *Service) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	row, err := s.logs.GetByID(ctx, notificationID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.ErrNotificationNotOwned
		}
		return fmt.Errorf("mark as read: %w", err)
	}
	if !row.IsOwnedBy(userID) {
		return shared.ErrNotificationNotOwned
	}

	if err := s.logs.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark as read: failed to save: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// MarkAllAsRead marks every unread row of the user as read. Zero unread rows
// is a successful no-op.
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.logs.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all as read: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.unread == nil {
		return
	}
	if err := s.unread.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("unread cache invalidation failed", "user_id", userID, "error", err)
	}
}
