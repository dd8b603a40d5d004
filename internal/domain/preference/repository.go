package preference

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists notification preferences.
type Repository interface {
	// Get returns the user's stored preference row.
	// Returns shared.ErrNotFound when the user has no row.
	Get(ctx context.Context, userID uuid.UUID) (*Preference, error)

	// Save inserts or fully replaces the user's row.
	Save(ctx context.Context, pref *Preference) error
}
