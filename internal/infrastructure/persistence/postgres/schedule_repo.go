package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/festhub/festival-hub/internal/domain/schedule"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// ScheduleReader implements schedule.Reader on the programme read-model
// tables.
type ScheduleReader struct {
	conn *Connection
}

// NewScheduleReader creates a new schedule reader.
func NewScheduleReader(conn *Connection) *ScheduleReader {
	return &ScheduleReader{conn: conn}
}

const listSchedulesByEditionQuery = `
	SELECT id, user_id, edition_id, name, created_at
	FROM personal_schedules
	WHERE edition_id = $1
	ORDER BY id
	LIMIT $2 OFFSET $3`

const listSchedulesByEngagementQuery = `
	SELECT s.id, s.user_id, s.edition_id, s.name, s.created_at
	FROM personal_schedules s
	JOIN personal_schedule_entries e ON e.schedule_id = s.id
	WHERE e.engagement_id = $1
	ORDER BY s.id`

const listEngagementsBetweenQuery = `
	SELECT id, edition_id, artist_name, stage_name, starts_at, ends_at
	FROM engagements
	WHERE starts_at >= $1 AND starts_at < $2
	ORDER BY starts_at`

// ListSchedulesByEdition implements schedule.Reader.
func (r *ScheduleReader) ListSchedulesByEdition(ctx context.Context, editionID uuid.UUID, page shared.Pagination) ([]*schedule.PersonalSchedule, error) {
	rows, err := r.conn.Query(ctx, listSchedulesByEditionQuery, editionID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules by edition: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// ListSchedulesByEngagement implements schedule.Reader.
func (r *ScheduleReader) ListSchedulesByEngagement(ctx context.Context, engagementID uuid.UUID) ([]*schedule.PersonalSchedule, error) {
	rows, err := r.conn.Query(ctx, listSchedulesByEngagementQuery, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules by engagement: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// ListEngagementsStartingBetween implements schedule.Reader.
func (r *ScheduleReader) ListEngagementsStartingBetween(ctx context.Context, from, to time.Time) ([]*schedule.Engagement, error) {
	rows, err := r.conn.Query(ctx, listEngagementsBetweenQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming engagements: %w", err)
	}
	defer rows.Close()

	var engagements []*schedule.Engagement
	for rows.Next() {
		var e schedule.Engagement
		if err := rows.Scan(&e.ID, &e.EditionID, &e.ArtistName, &e.StageName, &e.StartsAt, &e.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		engagements = append(engagements, &e)
	}
	return engagements, rows.Err()
}

// scanSchedules scans a personal schedule result set.
func scanSchedules(rows pgx.Rows) ([]*schedule.PersonalSchedule, error) {
	var schedules []*schedule.PersonalSchedule
	for rows.Next() {
		var s schedule.PersonalSchedule
		if err := rows.Scan(&s.ID, &s.UserID, &s.EditionID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan personal schedule: %w", err)
		}
		schedules = append(schedules, &s)
	}
	return schedules, rows.Err()
}
