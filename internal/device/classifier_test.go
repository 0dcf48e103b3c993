package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const chromeMacUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestClassifyDesktopBrowser(t *testing.T) {
	profile := Classify(chromeMacUA)

	require.False(t, profile.IsBot)
	require.Nil(t, profile.BotName)
	require.Nil(t, profile.BotCategory)
	require.Equal(t, "desktop", profile.DeviceName)
	require.NotNil(t, profile.OS)
	require.Equal(t, "macOS", profile.OS.Name)
	require.NotNil(t, profile.Client)
	require.Equal(t, "Chrome", profile.Client.Name)
	require.Equal(t, chromeMacUA, profile.UserAgent)
}

func TestClassifySearchBot(t *testing.T) {
	profile := Classify("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")

	require.True(t, profile.IsBot)
	require.Equal(t, "bot", profile.DeviceName)
	require.NotNil(t, profile.BotName)
	require.NotNil(t, profile.BotCategory)
	require.Equal(t, "Search bot", *profile.BotCategory)
}

func TestClassifyHTTPClientAsBot(t *testing.T) {
	profile := Classify("curl/8.4.0")

	require.True(t, profile.IsBot)
	require.NotNil(t, profile.BotCategory)
	require.Equal(t, "HTTP client", *profile.BotCategory)
}

func TestClassifyMalformedInputDoesNotFail(t *testing.T) {
	for _, raw := range []string{"", "   ", "%%%###", "Mozilla"} {
		profile := Classify(raw)
		require.False(t, profile.IsBot)
		require.Nil(t, profile.Brand)
		require.Nil(t, profile.Model)
	}
}

func TestProfileMapIncludesNilFields(t *testing.T) {
	doc := Classify("").Map()

	for _, key := range []string{"ip", "user_agent", "is_bot", "bot_name", "bot_category", "device_name", "brand", "model", "os", "client"} {
		_, ok := doc[key]
		require.True(t, ok, "missing key %s", key)
	}
	require.Nil(t, doc["os"])
	require.Nil(t, doc["client"])
}
