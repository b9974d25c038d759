package whiteboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recently built projections in redis for the polling fan-out.
// Invalidation bumps a per-clinic version key instead of scanning, so a
// mutation instantly orphans every cached view of that clinic.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a projection cache. A zero ttl falls back to 15s.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil {
		panic("whiteboard: redis client required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns a cached projection if present. Any redis failure reads as a
// miss; the projector falls through to the database.
func (c *Cache) Get(ctx context.Context, clinicID string, day time.Time, filter Filter) ([]Row, bool) {
	key, err := c.key(ctx, clinicID, day, filter)
	if err != nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []Row
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// Set stores a built projection under the clinic's current version.
func (c *Cache) Set(ctx context.Context, clinicID string, day time.Time, filter Filter, rows []Row) error {
	key, err := c.key(ctx, clinicID, day, filter)
	if err != nil {
		return fmt.Errorf("whiteboard: cache key: %w", err)
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("whiteboard: marshal rows: %w", err)
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("whiteboard: cache set: %w", err)
	}
	return nil
}

// Invalidate orphans every cached projection for the clinic.
func (c *Cache) Invalidate(ctx context.Context, clinicID string) error {
	if err := c.rdb.Incr(ctx, versionKey(clinicID)).Err(); err != nil {
		return fmt.Errorf("whiteboard: cache invalidate: %w", err)
	}
	return nil
}

func (c *Cache) key(ctx context.Context, clinicID string, day time.Time, filter Filter) (string, error) {
	ver, err := c.rdb.Get(ctx, versionKey(clinicID)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	fingerprint := strings.ToLower(fmt.Sprintf("%s|%s|%s|%s",
		filter.Show, filter.ProviderID, filter.ApptType, strings.TrimSpace(filter.Query)))
	return fmt.Sprintf("board:%s:v%d:%s:%s",
		clinicID, ver, day.UTC().Format("2006-01-02"), fingerprint), nil
}

func versionKey(clinicID string) string {
	return "board:ver:" + clinicID
}
