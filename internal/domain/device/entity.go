// Package device contains the device token aggregate: per-user push tokens
// registered by mobile and web clients.
package device

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/festhub/festival-hub/internal/domain/shared"
)

// Known platforms. Stored lowercased; other values are accepted as-is so new
// client platforms do not require a migration.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
)

// Token is a push-capable device registered by a user. A user may hold any
// number of tokens; the (UserID, Token) pair is unique.
type Token struct {
	// ID is the surrogate identifier of the registration row.
	ID uuid.UUID

	// UserID is the owning attendee.
	UserID uuid.UUID

	// Value is the opaque provider token string.
	Value string

	// Platform is the client platform, always lowercased.
	Platform string

	// Name is an optional human-readable device label ("Pixel 8").
	Name string

	// Active reports whether the token should receive pushes.
	Active bool

	// LastUsedAt is refreshed on every registration of the same token.
	LastUsedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegisterParams carries the client-supplied fields of a registration.
type RegisterParams struct {
	UserID   uuid.UUID
	Token    string
	Platform string
	Name     string
}

// NormalizePlatform lowercases and trims a client-supplied platform string.
func NormalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// New builds an active Token from registration params.
func New(params RegisterParams, now time.Time) (*Token, error) {
	if err := validate(params); err != nil {
		return nil, err
	}
	return &Token{
		ID:         uuid.New(),
		UserID:     params.UserID,
		Value:      strings.TrimSpace(params.Token),
		Platform:   NormalizePlatform(params.Platform),
		Name:       strings.TrimSpace(params.Name),
		Active:     true,
		LastUsedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Refresh re-activates an existing token and picks up the latest
// client-supplied platform and name. Called when the same (user, token) pair
// registers again.
func (t *Token) Refresh(params RegisterParams, now time.Time) error {
	if err := validate(params); err != nil {
		return err
	}
	t.Platform = NormalizePlatform(params.Platform)
	if name := strings.TrimSpace(params.Name); name != "" {
		t.Name = name
	}
	t.Active = true
	t.LastUsedAt = now
	t.UpdatedAt = now
	return nil
}

// Deactivate marks the token as no longer push-capable.
func (t *Token) Deactivate(now time.Time) {
	t.Active = false
	t.UpdatedAt = now
}

// IsOwnedBy reports whether the token belongs to the given user.
func (t *Token) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

func validate(params RegisterParams) error {
	if params.UserID == uuid.Nil {
		return shared.NewDomainError("device", "Validate", shared.ErrInvalidID, "user ID is required")
	}
	if strings.TrimSpace(params.Token) == "" {
		return shared.ErrEmptyToken
	}
	if NormalizePlatform(params.Platform) == "" {
		return shared.ErrEmptyPlatform
	}
	return nil
}
