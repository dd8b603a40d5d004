// Package devices implements the device registry: registration and
// deactivation of per-user push tokens.
package devices

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/device"
	"github.com/festhub/festival-hub/internal/domain/shared"
	"github.com/festhub/festival-hub/pkg/clock"
)

// Service orchestrates device token registration.
type Service struct {
	devices device.Repository
	clock   clock.Clock
	logger  *slog.Logger
}

// NewService creates a device registry service.
func NewService(repo device.Repository, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		devices: repo,
		clock:   clk,
		logger:  logger.With("service", "devices"),
	}
}

// Register stores or refreshes a device token. Registering the same
// (user, token) pair again refreshes the row instead of duplicating it, so
// clients may call this on every app start.
func (s *Service) Register(ctx context.Context, params device.RegisterParams) (*device.Token, error) {
	token, err := device.New(params, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}

	stored, err := s.devices.Upsert(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("register device: failed to save: %w", err)
	}

	s.logger.Debug("device registered",
		"user_id", stored.UserID,
		"device_id", stored.ID,
		"platform", stored.Platform,
	)
	return stored, nil
}

// ActiveDevices returns the user's active tokens. An empty slice is a valid
// result.
func (s *Service) ActiveDevices(ctx context.Context, userID uuid.UUID) ([]*device.Token, error) {
	tokens, err := s.devices.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active devices: %w", err)
	}
	return tokens, nil
}

// DeactivateByID deactivates one of the caller's devices. A device that does
// not exist and a device owned by someone else are indistinguishable to the
// caller: both return shared.ErrForbidden.
func (s *Service) DeactivateByID(ctx context.Context, userID, deviceID uuid.UUID) error {
	token, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.ErrDeviceNotOwned
		}
		return fmt.Errorf("deactivate device: %w", err)
	}
	if !token.IsOwnedBy(userID) {
		return shared.ErrDeviceNotOwned
	}

	token.Deactivate(s.clock.Now())
	if err := s.devices.Update(ctx, token); err != nil {
		return fmt.Errorf("deactivate device: failed to save: %w", err)
	}

	s.logger.Debug("device deactivated", "user_id", userID, "device_id", deviceID)
	return nil
}

// DeactivateByToken deactivates every registration carrying the token
// string, without an ownership check: the caller presenting the token is
// proof enough. Used when a push provider reports the token dead. A token
// that matches nothing is not an error.
func (s *Service) DeactivateByToken(ctx context.Context, tokenValue string) error {
	if err := s.devices.DeactivateByValue(ctx, tokenValue); err != nil {
		return fmt.Errorf("deactivate by token: %w", err)
	}
	return nil
}
