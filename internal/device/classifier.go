package device

import (
	"strings"

	"github.com/mileusna/useragent"
)

// OSInfo describes the operating system extracted from a user agent.
type OSInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientInfo describes the browser or HTTP client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Profile is the structured classification of a raw user-agent string.
// It is embedded into activity record properties under "device" and is
// never persisted on its own.
type Profile struct {
	IP          string      `json:"ip"`
	UserAgent   string      `json:"user_agent"`
	IsBot       bool        `json:"is_bot"`
	BotName     *string     `json:"bot_name"`
	BotCategory *string     `json:"bot_category"`
	DeviceName  string      `json:"device_name"`
	Brand       *string     `json:"brand"`
	Model       *string     `json:"model"`
	OS          *OSInfo     `json:"os"`
	Client      *ClientInfo `json:"client"`
}

// Map renders the profile as a plain document suitable for a JSON
// properties column.
func (p Profile) Map() map[string]interface{} {
	doc := map[string]interface{}{
		"ip":           p.IP,
		"user_agent":   p.UserAgent,
		"is_bot":       p.IsBot,
		"bot_name":     nil,
		"bot_category": nil,
		"device_name":  p.DeviceName,
		"brand":        nil,
		"model":        nil,
		"os":           nil,
		"client":       nil,
	}
	if p.BotName != nil {
		doc["bot_name"] = *p.BotName
	}
	if p.BotCategory != nil {
		doc["bot_category"] = *p.BotCategory
	}
	if p.Brand != nil {
		doc["brand"] = *p.Brand
	}
	if p.Model != nil {
		doc["model"] = *p.Model
	}
	if p.OS != nil {
		doc["os"] = map[string]interface{}{"name": p.OS.Name, "version": p.OS.Version}
	}
	if p.Client != nil {
		doc["client"] = map[string]interface{}{"name": p.Client.Name, "version": p.Client.Version}
	}
	return doc
}

// botCategories maps bot signature fragments to a coarse category label.
// Matching is case-insensitive over the full user-agent string.
var botCategories = []struct {
	fragment string
	category string
}{
	{"googlebot", "Search bot"},
	{"bingbot", "Search bot"},
	{"duckduckbot", "Search bot"},
	{"yandexbot", "Search bot"},
	{"baiduspider", "Search bot"},
	{"ahrefsbot", "Crawler"},
	{"semrushbot", "Crawler"},
	{"mj12bot", "Crawler"},
	{"facebookexternalhit", "Social media agent"},
	{"twitterbot", "Social media agent"},
	{"slackbot", "Social media agent"},
	{"telegrambot", "Social media agent"},
	{"uptimerobot", "Site monitor"},
	{"pingdom", "Site monitor"},
	{"statuscake", "Site monitor"},
	{"curl", "HTTP client"},
	{"wget", "HTTP client"},
	{"python-requests", "HTTP client"},
	{"go-http-client", "HTTP client"},
}

// Classify parses a raw user-agent string into a device profile. It
// never fails: unparseable fields resolve to empty or nil values and a
// non-matching agent is simply not a bot. The IP field is left empty for
// the caller to fill.
func Classify(rawUA string) Profile {
	profile := Profile{UserAgent: rawUA}
	if strings.TrimSpace(rawUA) == "" {
		return profile
	}

	ua := useragent.Parse(rawUA)

	if ua.Bot || matchBotCategory(rawUA) != "" {
		profile.IsBot = true
		profile.DeviceName = "bot"
		name := strings.TrimSpace(ua.Name)
		if name == "" {
			name = botNameFromSignature(rawUA)
		}
		if name != "" {
			profile.BotName = &name
		}
		if category := matchBotCategory(rawUA); category != "" {
			profile.BotCategory = &category
		}
		return profile
	}

	switch {
	case ua.Mobile:
		profile.DeviceName = "smartphone"
	case ua.Tablet:
		profile.DeviceName = "tablet"
	case ua.Desktop:
		profile.DeviceName = "desktop"
	}

	if device := strings.TrimSpace(ua.Device); device != "" {
		profile.Brand = &device
	}
	if os := strings.TrimSpace(ua.OS); os != "" {
		profile.OS = &OSInfo{Name: os, Version: ua.OSVersion}
	}
	if client := strings.TrimSpace(ua.Name); client != "" {
		profile.Client = &ClientInfo{Name: client, Version: ua.Version}
	}

	return profile
}

func matchBotCategory(rawUA string) string {
	lower := strings.ToLower(rawUA)
	for _, entry := range botCategories {
		if strings.Contains(lower, entry.fragment) {
			return entry.category
		}
	}
	return ""
}

func botNameFromSignature(rawUA string) string {
	lower := strings.ToLower(rawUA)
	for _, entry := range botCategories {
		if strings.Contains(lower, entry.fragment) {
			return entry.fragment
		}
	}
	return ""
}
