package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AccessThrottle suppresses repeat access logging per authenticated
// actor over a short window. The policy is advisory: a race between
// ShouldLog and MarkLogged can let two records through, which is
// accepted instead of paying for a lock.
type AccessThrottle struct {
	cache  *redis.Client
	window time.Duration
	logger zerolog.Logger
}

// NewAccessThrottle constructs the throttle. A nil cache client
// disables throttling altogether (every access is logged).
func NewAccessThrottle(cache *redis.Client, window time.Duration, logger zerolog.Logger) *AccessThrottle {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &AccessThrottle{
		cache:  cache,
		window: window,
		logger: logger.With().Str("component", "access_throttle").Logger(),
	}
}

// ShouldLog reports whether an access record should be written for the
// actor. Redis failures count as "log it": losing the throttle is a
// performance regression, not a reason to drop audit data.
func (t *AccessThrottle) ShouldLog(ctx context.Context, actorID uint) bool {
	if t.cache == nil {
		return true
	}

	exists, err := t.cache.Exists(ctx, t.key(actorID)).Result()
	if err != nil {
		t.logger.Warn().Err(err).Uint("actor_id", actorID).Msg("throttle check failed")
		return true
	}
	return exists == 0
}

// MarkLogged records that an access entry was just written for the
// actor; the marker expires after the throttle window.
func (t *AccessThrottle) MarkLogged(ctx context.Context, actorID uint) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Set(ctx, t.key(actorID), "1", t.window).Err(); err != nil {
		t.logger.Warn().Err(err).Uint("actor_id", actorID).Msg("failed to set throttle marker")
	}
}

func (t *AccessThrottle) key(actorID uint) string {
	return fmt.Sprintf("access_log_throttle:%d", actorID)
}
