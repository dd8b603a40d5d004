package device

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists device tokens.
type Repository interface {
	// Upsert inserts the token or, when the (user, token) pair already
	// exists, refreshes platform, name, active flag and last-used time.
	// Returns the stored row.
	Upsert(ctx context.Context, token *Token) (*Token, error)

	// GetByID returns a token by its surrogate ID.
	// Returns shared.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Token, error)

	// ListActiveByUser returns the user's active tokens, newest first.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Token, error)

	// Update persists mutations of an existing row.
	Update(ctx context.Context, token *Token) error

	// DeactivateByValue deactivates every row carrying the given token
	// string, regardless of owner. Matching zero rows is not an error.
	DeactivateByValue(ctx context.Context, tokenValue string) error
}
