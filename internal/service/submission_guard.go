package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/soranokaze/glimpanel/pkg/logger"
)

// releaseScript deletes the lock only when the stored token still matches the
// caller's, so a slow request that finishes after its lock expired cannot
// clobber a newer submission's lock.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// SubmissionGuard is an advisory per-user lock that short-circuits duplicate
// gift submissions. It is a UX layer, not a correctness mechanism: whenever
// Redis is absent or failing it fails open and the transfer's idempotency key
// carries the real guarantee.
type SubmissionGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubmissionGuard(rdb *redis.Client, ttl time.Duration) *SubmissionGuard {
	return &SubmissionGuard{rdb: rdb, ttl: ttl}
}

// Acquire returns ok=false when a submission for this user is already in
// flight. The returned token must be passed back to Release.
func (g *SubmissionGuard) Acquire(ctx context.Context, userID uuid.UUID) (string, bool) {
	if g.rdb == nil {
		return "", true
	}

	token := uuid.NewString()
	wasSet, err := g.rdb.SetNX(ctx, g.key(userID), token, g.ttl).Result()
	if err != nil {
		logger.Warnf("submission guard unavailable, failing open: %v", err)
		return "", true
	}
	if !wasSet {
		return "", false
	}

	return token, true
}

// Release frees the lock if this caller still owns it. Safe to call with the
// empty token a failed-open Acquire returned.
func (g *SubmissionGuard) Release(ctx context.Context, userID uuid.UUID, token string) {
	if g.rdb == nil || token == "" {
		return
	}

	if err := releaseScript.Run(ctx, g.rdb, []string{g.key(userID)}, token).Err(); err != nil && err != redis.Nil {
		logger.Warnf("failed to release submission guard for user %s: %v", userID, err)
	}
}

func (g *SubmissionGuard) key(userID uuid.UUID) string {
	return "gift_lock:user:" + userID.String()
}
