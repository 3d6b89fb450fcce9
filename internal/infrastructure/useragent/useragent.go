// Package useragent derives coarse device, browser, and OS facts from a
// raw User-Agent header by substring and pattern matching. Unrecognized
// agents fall back to "Unknown" rather than guessing.
package useragent

import (
	"regexp"
	"strings"
)

// Unknown marks any field the parser could not classify.
const Unknown = "Unknown"

// Info is the parsed view of a User-Agent string.
type Info struct {
	DeviceType     string `json:"deviceType"` // mobile, tablet, desktop
	BrowserFamily  string `json:"browserFamily"`
	BrowserVersion string `json:"browserVersion"` // major version only
	OSFamily       string `json:"osFamily"`
	OSVersion      string `json:"osVersion"`
	IsBot          bool   `json:"isBot"`
}

var botPattern = regexp.MustCompile(`(?i)bot|crawler|spider|crawling|slurp|bingpreview|facebookexternalhit|headless|lighthouse|pingdom|pagespeed`)

// browser match order matters: Edge and Opera embed "Chrome", Chrome
// embeds "Safari".
var browserMatchers = []struct {
	family  string
	pattern *regexp.Regexp
}{
	{"Edge", regexp.MustCompile(`Edg(?:e|A|iOS)?/(\d+)`)},
	{"Opera", regexp.MustCompile(`OPR/(\d+)`)},
	{"Samsung Internet", regexp.MustCompile(`SamsungBrowser/(\d+)`)},
	{"Chrome", regexp.MustCompile(`(?:Chrome|CriOS)/(\d+)`)},
	{"Firefox", regexp.MustCompile(`(?:Firefox|FxiOS)/(\d+)`)},
	{"Safari", regexp.MustCompile(`Version/(\d+)[\d.]* .*Safari`)},
	{"Internet Explorer", regexp.MustCompile(`MSIE (\d+)|Trident/.*rv:(\d+)`)},
}

var (
	windowsVersion = regexp.MustCompile(`Windows NT ([\d.]+)`)
	macVersion     = regexp.MustCompile(`Mac OS X ([\d_.]+)`)
	androidVersion = regexp.MustCompile(`Android ([\d.]+)`)
	iosVersion     = regexp.MustCompile(`OS ([\d_]+) like Mac OS X`)
)

// Parse classifies a User-Agent string. An empty string yields all
// Unknown fields and a desktop device type.
func Parse(ua string) Info {
	info := Info{
		DeviceType:     deviceType(ua),
		BrowserFamily:  Unknown,
		BrowserVersion: Unknown,
		OSFamily:       Unknown,
		OSVersion:      Unknown,
		IsBot:          ua != "" && botPattern.MatchString(ua),
	}
	if ua == "" {
		return info
	}

	for _, matcher := range browserMatchers {
		if m := matcher.pattern.FindStringSubmatch(ua); m != nil {
			info.BrowserFamily = matcher.family
			for _, group := range m[1:] {
				if group != "" {
					info.BrowserVersion = group
					break
				}
			}
			break
		}
	}

	switch {
	case strings.Contains(ua, "Windows"):
		info.OSFamily = "Windows"
		if m := windowsVersion.FindStringSubmatch(ua); m != nil {
			info.OSVersion = m[1]
		}
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad"):
		info.OSFamily = "iOS"
		if m := iosVersion.FindStringSubmatch(ua); m != nil {
			info.OSVersion = strings.ReplaceAll(m[1], "_", ".")
		}
	case strings.Contains(ua, "Android"):
		info.OSFamily = "Android"
		if m := androidVersion.FindStringSubmatch(ua); m != nil {
			info.OSVersion = m[1]
		}
	case strings.Contains(ua, "Mac OS X"):
		info.OSFamily = "macOS"
		if m := macVersion.FindStringSubmatch(ua); m != nil {
			info.OSVersion = strings.ReplaceAll(m[1], "_", ".")
		}
	case strings.Contains(ua, "CrOS"):
		info.OSFamily = "ChromeOS"
	case strings.Contains(ua, "Linux"):
		info.OSFamily = "Linux"
	}

	return info
}

func deviceType(ua string) string {
	switch {
	case strings.Contains(ua, "iPad"),
		strings.Contains(ua, "Tablet"),
		strings.Contains(ua, "Android") && !strings.Contains(ua, "Mobile"):
		return "tablet"
	case strings.Contains(ua, "Mobi"),
		strings.Contains(ua, "iPhone"),
		strings.Contains(ua, "Android"):
		return "mobile"
	default:
		return "desktop"
	}
}
