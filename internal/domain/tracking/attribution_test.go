package tracking

import (
	"testing"
	"time"
)

func TestInferChannel(t *testing.T) {
	cases := []struct {
		name         string
		utm          map[string]string
		referrerHost string
		want         Channel
	}{
		{"no signals is direct", nil, "", ChannelDirect},
		{"gclid wins", map[string]string{ClickIDGoogle: "abc123"}, "google.com", ChannelPaid},
		{"fbclid wins over social referrer", map[string]string{ClickIDFacebook: "xyz"}, "facebook.com", ChannelPaid},
		{"cpc medium", map[string]string{UTMMedium: "cpc"}, "", ChannelPaid},
		{"paid-social medium", map[string]string{UTMMedium: "Paid-Social"}, "", ChannelPaid},
		{"email medium", map[string]string{UTMMedium: "email"}, "", ChannelEmail},
		{"email medium beats search referrer", map[string]string{UTMMedium: "EMAIL"}, "www.google.com", ChannelEmail},
		{"social medium", map[string]string{UTMMedium: "organic-social"}, "", ChannelSocial},
		{"search referrer", nil, "www.google.co.uk", ChannelOrganic},
		{"duckduckgo referrer", nil, "duckduckgo.com", ChannelOrganic},
		{"social referrer", nil, "l.instagram.com", ChannelSocial},
		{"t.co referrer", nil, "t.co", ChannelSocial},
		{"plain external referrer", nil, "somepartner.example.org", ChannelReferral},
		{"unknown medium falls through to referrer", map[string]string{UTMMedium: "banner"}, "blog.example.net", ChannelReferral},
		{"unknown medium with no referrer is direct", map[string]string{UTMMedium: "banner"}, "", ChannelDirect},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferChannel(tc.utm, tc.referrerHost); got != tc.want {
				t.Fatalf("InferChannel(%v, %q) = %q, want %q", tc.utm, tc.referrerHost, got, tc.want)
			}
		})
	}
}

func TestCaptureUTM(t *testing.T) {
	got := CaptureUTM("https://example.com/pricing?utm_source=newsletter&utm_medium=email&utm_campaign=spring&gclid=g123&other=x")
	want := map[string]string{
		UTMSource:     "newsletter",
		UTMMedium:     "email",
		UTMCampaign:   "spring",
		ClickIDGoogle: "g123",
	}
	if len(got) != len(want) {
		t.Fatalf("captured %d params, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("param %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestCaptureUTMMalformedURL(t *testing.T) {
	got := CaptureUTM("://not a url")
	if len(got) != 0 {
		t.Fatalf("expected empty map for malformed URL, got %v", got)
	}
}

func TestMergeFirstTouchNeverOverwrites(t *testing.T) {
	existing := map[string]string{UTMSource: "newsletter", UTMMedium: "email"}
	merged := MergeFirstTouch(existing, map[string]string{
		UTMSource:   "google",
		UTMCampaign: "retarget",
	})

	if merged[UTMSource] != "newsletter" {
		t.Errorf("source overwritten: got %q", merged[UTMSource])
	}
	if merged[UTMMedium] != "email" {
		t.Errorf("medium overwritten: got %q", merged[UTMMedium])
	}
	if merged[UTMCampaign] != "retarget" {
		t.Errorf("campaign not filled in: got %q", merged[UTMCampaign])
	}
}

func TestMergeFirstTouchNilExisting(t *testing.T) {
	merged := MergeFirstTouch(nil, map[string]string{UTMSource: "google"})
	if merged[UTMSource] != "google" {
		t.Fatalf("merge into nil map failed: %v", merged)
	}
}

func TestParseReferrerHost(t *testing.T) {
	if got := ParseReferrerHost("https://WWW.Google.com/search?q=training"); got != "www.google.com" {
		t.Errorf("host = %q, want www.google.com", got)
	}
	if got := ParseReferrerHost(""); got != "" {
		t.Errorf("empty referrer should give empty host, got %q", got)
	}
	if got := ParseReferrerHost("://bad"); got != "" {
		t.Errorf("malformed referrer should give empty host, got %q", got)
	}
}

func TestPageVisitCloseClampsNegativeDuration(t *testing.T) {
	start := time.Now()
	visit := PageVisit{Path: "/pricing", StartedAt: start}
	visit.Close(start.Add(-2 * time.Second))

	if visit.DurationMs == nil {
		t.Fatal("duration not set")
	}
	if *visit.DurationMs != 0 {
		t.Fatalf("duration = %d, want 0 for backwards clock", *visit.DurationMs)
	}
	if visit.Open() {
		t.Fatal("visit still open after Close")
	}
}

func TestPageVisitCloseIsIdempotent(t *testing.T) {
	start := time.Now()
	visit := PageVisit{Path: "/", StartedAt: start}
	visit.Close(start.Add(time.Second))
	first := *visit.DurationMs

	visit.Close(start.Add(10 * time.Second))
	if *visit.DurationMs != first {
		t.Fatalf("second Close changed duration from %d to %d", first, *visit.DurationMs)
	}
}
