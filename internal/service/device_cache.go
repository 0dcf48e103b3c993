package service

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/admin-audit-api/internal/device"
	"github.com/noah-isme/admin-audit-api/internal/observability"
)

// Classifier parses a user-agent string into a device profile. Injected
// so tests can count invocations.
type Classifier func(userAgent string) device.Profile

// DeviceDetailService memoizes device classification results in Redis.
// Keys combine the user-agent hash with the detection mode: lookups for
// authenticated visitors skip bot detection entirely and must not share
// entries with anonymous lookups.
type DeviceDetailService struct {
	cache    *redis.Client
	ttl      time.Duration
	classify Classifier
	logger   zerolog.Logger
}

// NewDeviceDetailService constructs the cache-backed device detail
// service. A nil cache client degrades to classification on every call.
func NewDeviceDetailService(cache *redis.Client, ttl time.Duration, classify Classifier, logger zerolog.Logger) *DeviceDetailService {
	if classify == nil {
		classify = device.Classify
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DeviceDetailService{
		cache:    cache,
		ttl:      ttl,
		classify: classify,
		logger:   logger.With().Str("component", "device_detail_service").Logger(),
	}
}

// GetDeviceDetails returns the device profile for the given visitor.
// Authenticated visitors are assumed human: classification is skipped
// and a synthetic non-bot profile is returned. Anonymous visitors get
// the full classifier. Results are cached for the configured TTL;
// concurrent misses may each recompute, which is fine because
// classification is idempotent.
func (s *DeviceDetailService) GetDeviceDetails(ctx context.Context, ip, userAgent string, authenticated bool) device.Profile {
	if userAgent == "" {
		userAgent = "Unknown"
	}

	key := s.cacheKey(userAgent, authenticated)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var profile device.Profile
			if unmarshalErr := json.Unmarshal([]byte(cached), &profile); unmarshalErr == nil {
				observability.DeviceCacheLookups().WithLabelValues("hit").Inc()
				profile.IP = ip
				return profile
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read device detail cache")
		}
	}
	observability.DeviceCacheLookups().WithLabelValues("miss").Inc()

	profile := s.compute(userAgent, authenticated)

	if s.cache != nil {
		if payload, err := json.Marshal(profile); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store device detail cache")
			}
		}
	}

	profile.IP = ip
	return profile
}

func (s *DeviceDetailService) compute(userAgent string, authenticated bool) device.Profile {
	if authenticated {
		// Trusted sessions are never classified as bots; skipping the
		// parser here removes the bulk of classification work.
		return device.Profile{
			UserAgent:  userAgent,
			IsBot:      false,
			DeviceName: "Unknown",
		}
	}
	return s.classify(userAgent)
}

// The cached profile intentionally excludes the client IP: entries are
// shared across every visitor sending the same user agent.
func (s *DeviceDetailService) cacheKey(userAgent string, authenticated bool) string {
	mode := "anon"
	if authenticated {
		mode = "auth"
	}
	return fmt.Sprintf("device_details:%x:%s", md5.Sum([]byte(userAgent)), mode)
}
