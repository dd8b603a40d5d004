package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/festhub/festival-hub/internal/domain/device"
	"github.com/festhub/festival-hub/internal/domain/shared"
)

// DeviceRepository implements device.Repository on PostgreSQL.
type DeviceRepository struct {
	conn *Connection
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(conn *Connection) *DeviceRepository {
	return &DeviceRepository{conn: conn}
}

const deviceColumns = `id, user_id, token, platform, name, active, last_used_at, created_at, updated_at`

const upsertDeviceQuery = `
	INSERT INTO device_tokens (id, user_id, token, platform, name, active, last_used_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (user_id, token) DO UPDATE SET
		platform = EXCLUDED.platform,
		name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE device_tokens.name END,
		active = TRUE,
		last_used_at = EXCLUDED.last_used_at,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + deviceColumns

const getDeviceByIDQuery = `
	SELECT ` + deviceColumns + `
	FROM device_tokens
	WHERE id = $1`

const listActiveDevicesQuery = `
	SELECT ` + deviceColumns + `
	FROM device_tokens
	WHERE user_id = $1 AND active
	ORDER BY last_used_at DESC`

const updateDeviceQuery = `
	UPDATE device_tokens
	SET platform = $2, name = $3, active = $4, last_used_at = $5, updated_at = $6
	WHERE id = $1`

const deactivateByTokenQuery = `
	UPDATE device_tokens
	SET active = FALSE, updated_at = NOW()
	WHERE token = $1 AND active`

// Upsert implements device.Repository.
func (r *DeviceRepository) Upsert(ctx context.Context, token *device.Token) (*device.Token, error) {
	row := r.conn.QueryRow(ctx, upsertDeviceQuery,
		token.ID,
		token.UserID,
		token.Value,
		token.Platform,
		token.Name,
		token.Active,
		token.LastUsedAt,
		token.CreatedAt,
		token.UpdatedAt,
	)

	stored, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device token: %w", err)
	}
	return stored, nil
}

// GetByID implements device.Repository.
func (r *DeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*device.Token, error) {
	token, err := scanDevice(r.conn.QueryRow(ctx, getDeviceByIDQuery, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device token: %w", err)
	}
	return token, nil
}

// ListActiveByUser implements device.Repository.
func (r *DeviceRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*device.Token, error) {
	rows, err := r.conn.Query(ctx, listActiveDevicesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active devices: %w", err)
	}
	defer rows.Close()

	return scanDevices(rows)
}

// Update implements device.Repository.
func (r *DeviceRepository) Update(ctx context.Context, token *device.Token) error {
	tag, err := r.conn.Exec(ctx, updateDeviceQuery,
		token.ID,
		token.Platform,
		token.Name,
		token.Active,
		token.LastUsedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update device token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrDeviceNotFound
	}
	return nil
}

// DeactivateByValue implements device.Repository.
func (r *DeviceRepository) DeactivateByValue(ctx context.Context, tokenValue string) error {
	if _, err := r.conn.Exec(ctx, deactivateByTokenQuery, tokenValue); err != nil {
		return fmt.Errorf("failed to deactivate by token: %w", err)
	}
	return nil
}

// scanDevice scans one device token row.
func scanDevice(row pgx.Row) (*device.Token, error) {
	var t device.Token
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Value,
		&t.Platform,
		&t.Name,
		&t.Active,
		&t.LastUsedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanDevices scans a device token result set.
func scanDevices(rows pgx.Rows) ([]*device.Token, error) {
	var tokens []*device.Token
	for rows.Next() {
		token, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
