package redis

import (
	"context"

	"github.com/google/uuid"
)

// UnreadCountCache caches per-user unread notification counts. It
// implements history.UnreadCache.
//
// Entries carry a TTL so a missed invalidation heals on its own.
type UnreadCountCache struct {
	cache *Cache
}

// NewUnreadCountCache creates a new unread counter cache.
func NewUnreadCountCache(cache *Cache) *UnreadCountCache {
	return &UnreadCountCache{cache: cache}
}

// Get returns the cached unread count for a user.
// Returns ErrCacheMiss (a not-found error) when no counter is cached.
func (c *UnreadCountCache) Get(ctx context.Context, userID uuid.UUID) (int, error) {
	return c.cache.GetInt(ctx, UnreadKey(userID.String()))
}

// Set stores the unread count for a user with the default TTL.
func (c *UnreadCountCache) Set(ctx context.Context, userID uuid.UUID, count int) error {
	return c.cache.SetInt(ctx, UnreadKey(userID.String()), count, TTLUnreadCount)
}

// Invalidate drops the cached counter so the next read hits storage.
func (c *UnreadCountCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.cache.Delete(ctx, UnreadKey(userID.String()))
}
