package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"villaops/pkg/logger"
	"villaops/pkg/model"

	"github.com/redis/go-redis/v9"
)

const activeStaffKey = "villaops:staff:active"

// CachedDirectory is a read-through Redis cache in front of a Directory.
// Redis failures fall back to the wrapped directory.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedDirectory) ListActiveStaff(ctx context.Context) ([]model.StaffCandidate, error) {
	cached, err := c.get(ctx)
	if err != nil {
		c.log.Warn("Staff cache read failed", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	staff, err := c.next.ListActiveStaff(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, staff); err != nil {
		c.log.Warn("Staff cache write failed", "error", err)
	}
	return staff, nil
}

// Invalidate drops the cached list so the next read sees fresh workloads.
func (c *CachedDirectory) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, activeStaffKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate staff cache: %w", err)
	}
	return nil
}

func (c *CachedDirectory) get(ctx context.Context) ([]model.StaffCandidate, error) {
	val, err := c.client.Get(ctx, activeStaffKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff from redis: %w", err)
	}

	var staff []model.StaffCandidate
	if err := json.Unmarshal(val, &staff); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staff: %w", err)
	}
	return staff, nil
}

func (c *CachedDirectory) set(ctx context.Context, staff []model.StaffCandidate) error {
	data, err := json.Marshal(staff)
	if err != nil {
		return fmt.Errorf("failed to marshal staff: %w", err)
	}
	if err := c.client.Set(ctx, activeStaffKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set staff in redis: %w", err)
	}
	return nil
}
