package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// NotificationLogRepository implements notification.LogRepository on
// PostgreSQL.
type NotificationLogRepository struct {
	conn *Connection
}

// NewNotificationLogRepository creates a new delivery log repository.
func NewNotificationLogRepository(conn *Connection) *NotificationLogRepository {
	return &NotificationLogRepository{conn: conn}
}

const logColumns = `id, user_id, device_id, category, title, body, sent_at,
	delivered, error_message, related_type, related_id, read, created_at`

const createLogQuery = `
	INSERT INTO notification_logs (id, user_id, device_id, category, title, body,
		sent_at, delivered, error_message, related_type, related_id, read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const getLogByIDQuery = `
	SELECT ` + logColumns + `
	FROM notification_logs
	WHERE id = $1`

const listLogsByUserQuery = `
	SELECT ` + logColumns + `
	FROM notification_logs
	WHERE user_id = $1
	ORDER BY sent_at DESC, id DESC
	LIMIT $2 OFFSET $3`

const countUnreadQuery = `
	SELECT COUNT(*)
	FROM notification_logs
	WHERE user_id = $1 AND NOT read`

const markReadQuery = `
	UPDATE notification_logs
	SET read = TRUE
	WHERE id = $1`

const markAllReadQuery = `
	UPDATE notification_logs
	SET read = TRUE
	WHERE user_id = $1 AND NOT read`

const existsForRelatedQuery = `
	SELECT EXISTS (
		SELECT 1 FROM notification_logs
		WHERE user_id = $1 AND category = $2 AND related_type = $3 AND related_id = $4
	)`

// Create implements notification.LogRepository.
func (r *NotificationLogRepository) Create(ctx context.Context, log *notification.Log) error {
	_, err := r.conn.Exec(ctx, createLogQuery,
		log.ID,
		log.UserID,
		log.DeviceID,
		string(log.Category),
		log.Title,
		log.Body,
		log.SentAt,
		log.Delivered,
		log.ErrorMessage,
		log.RelatedType,
		log.RelatedID,
		log.Read,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification log: %w", err)
	}
	return nil
}

// GetByID implements notification.LogRepository.
func (r *NotificationLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Log, error) {
	log, err := scanLog(r.conn.QueryRow(ctx, getLogByIDQuery, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification log: %w", err)
	}
	return log, nil
}

// ListByUser implements notification.LogRepository.
func (r *NotificationLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*notification.Log, error) {
	rows, err := r.conn.Query(ctx, listLogsByUserQuery, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list notification logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// CountUnread implements notification.LogRepository.
func (r *NotificationLogRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.conn.QueryRow(ctx, countUnreadQuery, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead implements notification.LogRepository.
func (r *NotificationLogRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Exec(ctx, markReadQuery, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead implements notification.LogRepository.
func (r *NotificationLogRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.conn.Exec(ctx, markAllReadQuery, userID); err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}

// ExistsForRelated implements notification.LogRepository.
func (r *NotificationLogRepository) ExistsForRelated(ctx context.Context, userID uuid.UUID, category notification.Category, relatedType string, relatedID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, existsForRelatedQuery, userID, string(category), relatedType, relatedID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check related notification: %w", err)
	}
	return exists, nil
}

// scanLog scans one delivery log row.
func scanLog(row pgx.Row) (*notification.Log, error) {
	var (
		log      notification.Log
		category string
	)
	err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.DeviceID,
		&category,
		&log.Title,
		&log.Body,
		&log.SentAt,
		&log.Delivered,
		&log.ErrorMessage,
		&log.RelatedType,
		&log.RelatedID,
		&log.Read,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	log.Category = notification.Category(category)
	return &log, nil
}

// scanLogs scans a delivery log result set.
func scanLogs(rows pgx.Rows) ([]*notification.Log, error) {
	var logs []*notification.Log
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
