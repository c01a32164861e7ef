package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Action names a user operation throttled by a cooldown window.
type Action string

const ActionDailyClaim Action = "daily_claim"

// Cooldown enforces a fixed quiet period per user and action. Like the
// submission guard it is advisory: without a redis client every check passes,
// and correctness stays with the database constraints behind the endpoint.
type Cooldown struct {
	rdb    *redis.Client
	window time.Duration
}

func NewCooldown(rdb *redis.Client, window time.Duration) *Cooldown {
	return &Cooldown{rdb: rdb, window: window}
}

// Allow reports whether the action may run now, opening the window when it
// does. The first caller inside a window wins; later ones wait it out.
func (c *Cooldown) Allow(ctx context.Context, userID uuid.UUID, action Action) (bool, error) {
	if c.rdb == nil {
		return true, nil
	}

	wasSet, err := c.rdb.SetNX(ctx, c.key(userID, action), "held", c.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown in redis: %w", err)
	}

	return wasSet, nil
}

// Remaining returns how long until the action is allowed again.
func (c *Cooldown) Remaining(ctx context.Context, userID uuid.UUID, action Action) (time.Duration, error) {
	if c.rdb == nil {
		return 0, nil
	}
	return c.rdb.TTL(ctx, c.key(userID, action)).Result()
}

func (c *Cooldown) key(userID uuid.UUID, action Action) string {
	return fmt.Sprintf("cooldown:user:%s:%s", userID, action)
}
