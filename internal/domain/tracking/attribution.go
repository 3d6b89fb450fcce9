package tracking

import (
	"net/url"
	"strings"
)

// Channel classifies how a session reached the site.
type Channel string

const (
	ChannelPaid     Channel = "paid"
	ChannelEmail    Channel = "email"
	ChannelSocial   Channel = "social"
	ChannelOrganic  Channel = "organic"
	ChannelReferral Channel = "referral"
	ChannelDirect   Channel = "direct"
)

// MergeFirstTouch folds newly observed UTM values into an existing
// attribution map. A field that already holds a non-empty value is never
// overwritten; later navigations only fill gaps.
func MergeFirstTouch(existing, incoming map[string]string) map[string]string {
	if existing == nil {
		existing = make(map[string]string)
	}
	for _, key := range UTMKeys {
		value := incoming[key]
		if value == "" {
			continue
		}
		if existing[key] != "" {
			continue
		}
		existing[key] = value
	}
	return existing
}

// CaptureUTM extracts attribution parameters from a raw URL. A malformed
// URL yields an empty map rather than an error.
func CaptureUTM(rawURL string) map[string]string {
	out := make(map[string]string)
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return out
	}
	query := parsed.Query()
	for _, key := range UTMKeys {
		param := key
		switch key {
		case UTMSource, UTMMedium, UTMCampaign, UTMContent, UTMTerm:
			param = "utm_" + key
		}
		if value := query.Get(param); value != "" {
			out[key] = value
		}
	}
	return out
}

// ParseReferrerHost extracts the hostname from a referrer URL. Malformed
// referrers yield the empty string, never an error.
func ParseReferrerHost(referrer string) string {
	if referrer == "" {
		return ""
	}
	parsed, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// channelRule is one entry in the ordered inference table. Rules are
// evaluated top to bottom; the first match wins.
type channelRule struct {
	name    string
	matches func(utm map[string]string, referrerHost string) bool
	channel Channel
}

var searchHosts = []string{
	"google.", "bing.", "duckduckgo.", "yahoo.", "baidu.", "yandex.", "ecosia.",
}

var socialHosts = []string{
	"facebook.", "instagram.", "linkedin.", "twitter.", "x.com", "t.co",
	"youtube.", "tiktok.", "reddit.", "pinterest.",
}

// channelRules encodes the inference priority: paid click identifiers,
// then explicit UTM medium, then referrer-host heuristics, then direct.
var channelRules = []channelRule{
	{
		name: "paid click id",
		matches: func(utm map[string]string, _ string) bool {
			return utm[ClickIDGoogle] != "" || utm[ClickIDFacebook] != "" ||
				utm[ClickIDMicrosoft] != "" || utm[ClickIDTikTok] != ""
		},
		channel: ChannelPaid,
	},
	{
		name: "paid medium",
		matches: func(utm map[string]string, _ string) bool {
			switch strings.ToLower(utm[UTMMedium]) {
			case "cpc", "ppc", "paid", "paid-social", "display":
				return true
			}
			return false
		},
		channel: ChannelPaid,
	},
	{
		name: "email medium",
		matches: func(utm map[string]string, _ string) bool {
			return strings.EqualFold(utm[UTMMedium], "email")
		},
		channel: ChannelEmail,
	},
	{
		name: "social medium",
		matches: func(utm map[string]string, _ string) bool {
			switch strings.ToLower(utm[UTMMedium]) {
			case "social", "organic-social":
				return true
			}
			return false
		},
		channel: ChannelSocial,
	},
	{
		name: "search referrer",
		matches: func(_ map[string]string, referrerHost string) bool {
			return hostMatchesAny(referrerHost, searchHosts)
		},
		channel: ChannelOrganic,
	},
	{
		name: "social referrer",
		matches: func(_ map[string]string, referrerHost string) bool {
			return hostMatchesAny(referrerHost, socialHosts)
		},
		channel: ChannelSocial,
	},
	{
		name: "external referrer",
		matches: func(_ map[string]string, referrerHost string) bool {
			return referrerHost != ""
		},
		channel: ChannelReferral,
	},
}

// InferChannel derives channel attribution from UTM fields and the
// referrer host using the ordered rule table. Sessions matching no rule
// are direct.
func InferChannel(utm map[string]string, referrerHost string) Channel {
	host := strings.ToLower(referrerHost)
	for _, rule := range channelRules {
		if rule.matches(utm, host) {
			return rule.channel
		}
	}
	return ChannelDirect
}

func hostMatchesAny(host string, fragments []string) bool {
	if host == "" {
		return false
	}
	for _, fragment := range fragments {
		if strings.Contains(host, fragment) {
			return true
		}
	}
	return false
}
