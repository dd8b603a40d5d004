// Package preferences implements the notification preference store.
package preferences

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/preference"
	"github.com/festhub/festival-hub/internal/domain/shared"
	"github.com/festhub/festival-hub/pkg/clock"
)

// Store serves notification preferences with default fallback. The row is
// created lazily on the first Update; reads never write.
type Store struct {
	prefs  preference.Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewStore creates a preference store.
func NewStore(repo preference.Repository, clk clock.Clock, logger *slog.Logger) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		prefs:  repo,
		clock:  clk,
		logger: logger.With("service", "preferences"),
	}
}

// GetOrDefault returns the user's stored preferences, or the defaults when
// no row exists. Does not create a row.
func (s *Store) GetOrDefault(ctx context.Context, userID uuid.UUID) (*preference.Preference, error) {
	pref, err := s.prefs.Get(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return preference.Default(userID), nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return pref, nil
}

// Update merge-patches the user's preferences. Absent fields keep their
// current value; for users without a row the patch lands on the defaults and
// the result is persisted.
func (s *Store) Update(ctx context.Context, userID uuid.UUID, updates preference.Updates) (*preference.Preference, error) {
	if err := updates.Validate(); err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}

	pref, err := s.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	changed := pref.Apply(updates, now)
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
		pref.UpdatedAt = now
	}

	if err := s.prefs.Save(ctx, pref); err != nil {
		return nil, fmt.Errorf("update preferences: failed to save: %w", err)
	}

	s.logger.Debug("preferences updated", "user_id", userID, "changed_fields", changed)
	return pref, nil
}
