package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admin-audit-api/internal/device"
)

type countingClassifier struct {
	calls int
	last  string
	bot   bool
}

func (c *countingClassifier) classify(userAgent string) device.Profile {
	c.calls++
	c.last = userAgent
	return device.Profile{
		UserAgent:  userAgent,
		IsBot:      c.bot,
		DeviceName: "Desktop",
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	return mini, redis.NewClient(&redis.Options{Addr: mini.Addr()})
}

func TestDeviceDetailServiceCachesAnonymousLookups(t *testing.T) {
	_, client := newTestRedis(t)
	classifier := &countingClassifier{}
	svc := NewDeviceDetailService(client, time.Hour, classifier.classify, zerolog.Nop())

	ctx := context.Background()
	ua := "Mozilla/5.0 (Macintosh) Chrome/120.0"

	first := svc.GetDeviceDetails(ctx, "10.0.0.1", ua, false)
	second := svc.GetDeviceDetails(ctx, "10.0.0.2", ua, false)

	require.Equal(t, 1, classifier.calls)
	require.Equal(t, "Desktop", first.DeviceName)
	require.Equal(t, "Desktop", second.DeviceName)
	require.Equal(t, "10.0.0.1", first.IP)
	require.Equal(t, "10.0.0.2", second.IP)
}

func TestDeviceDetailServiceAuthenticatedSkipsClassifier(t *testing.T) {
	_, client := newTestRedis(t)
	classifier := &countingClassifier{bot: true}
	svc := NewDeviceDetailService(client, time.Hour, classifier.classify, zerolog.Nop())

	profile := svc.GetDeviceDetails(context.Background(), "10.0.0.1", "curl/8.0", true)

	require.Zero(t, classifier.calls)
	require.False(t, profile.IsBot)
	require.Equal(t, "Unknown", profile.DeviceName)
	require.Equal(t, "curl/8.0", profile.UserAgent)
}

func TestDeviceDetailServiceSeparatesDetectionModes(t *testing.T) {
	_, client := newTestRedis(t)
	classifier := &countingClassifier{bot: true}
	svc := NewDeviceDetailService(client, time.Hour, classifier.classify, zerolog.Nop())

	ctx := context.Background()
	ua := "curl/8.0"

	anonymous := svc.GetDeviceDetails(ctx, "10.0.0.1", ua, false)
	authenticated := svc.GetDeviceDetails(ctx, "10.0.0.1", ua, true)

	require.Equal(t, 1, classifier.calls)
	require.True(t, anonymous.IsBot)
	require.False(t, authenticated.IsBot)
}

func TestDeviceDetailServiceEmptyUserAgent(t *testing.T) {
	_, client := newTestRedis(t)
	classifier := &countingClassifier{}
	svc := NewDeviceDetailService(client, time.Hour, classifier.classify, zerolog.Nop())

	svc.GetDeviceDetails(context.Background(), "10.0.0.1", "", false)

	require.Equal(t, "Unknown", classifier.last)
}

func TestDeviceDetailServiceWithoutCacheRecomputes(t *testing.T) {
	classifier := &countingClassifier{}
	svc := NewDeviceDetailService(nil, time.Hour, classifier.classify, zerolog.Nop())

	ctx := context.Background()
	svc.GetDeviceDetails(ctx, "10.0.0.1", "Mozilla/5.0", false)
	svc.GetDeviceDetails(ctx, "10.0.0.1", "Mozilla/5.0", false)

	require.Equal(t, 2, classifier.calls)
}
