// Package tracking defines the visitor tracking domain model: sessions,
// page visits, attribution, and form submissions.
package tracking

import "time"

// UTM parameter keys recognized by attribution capture and merge.
const (
	UTMSource   = "source"
	UTMMedium   = "medium"
	UTMCampaign = "campaign"
	UTMContent  = "content"
	UTMTerm     = "term"
	ClickIDGoogle    = "gclid"
	ClickIDFacebook  = "fbclid"
	ClickIDMicrosoft = "msclkid"
	ClickIDTikTok    = "ttclid"
)

// UTMKeys lists every attribution field in capture order.
var UTMKeys = []string{
	UTMSource, UTMMedium, UTMCampaign, UTMContent, UTMTerm,
	ClickIDGoogle, ClickIDFacebook, ClickIDMicrosoft, ClickIDTikTok,
}

// Session is one browser tab's visit journey. The browser owns the
// authoritative copy; the server only receives periodic snapshots.
type Session struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"startedAt"`
	Referrer     string            `json:"referrer,omitempty"`
	ReferrerHost string            `json:"referrerHost,omitempty"`
	UTM          map[string]string `json:"utm,omitempty"`
	LandingPath  string            `json:"landingPath,omitempty"`
	Pages        []PageVisit       `json:"pages,omitempty"`
	DeviceInfo   *DeviceInfo       `json:"deviceInfo,omitempty"`
	SentToServer bool              `json:"sentToServer"`
}

// PageVisit records time spent on one path. At most one visit per session
// is open (EndedAt nil), always the most recently appended one.
type PageVisit struct {
	Path       string     `json:"path"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	DurationMs *int64     `json:"durationMs,omitempty"`
}

// Close ends the visit at the given instant. Duration is clamped to zero
// when clocks run backwards.
func (p *PageVisit) Close(at time.Time) {
	if p.EndedAt != nil {
		return
	}
	end := at
	p.EndedAt = &end
	ms := end.Sub(p.StartedAt).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	p.DurationMs = &ms
}

// Open reports whether the visit has not been closed yet.
func (p *PageVisit) Open() bool {
	return p.EndedAt == nil
}

// DeviceInfo holds client environment facts captured once per session.
type DeviceInfo struct {
	ScreenWidth    int    `json:"screenWidth,omitempty"`
	ScreenHeight   int    `json:"screenHeight,omitempty"`
	ViewportWidth  int    `json:"viewportWidth,omitempty"`
	ViewportHeight int    `json:"viewportHeight,omitempty"`
	Language       string `json:"language,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	ConnectionType string `json:"connectionType,omitempty"`
}

// Submission is a completed form event delivered alongside a snapshot.
type Submission struct {
	FormID    string            `json:"formId"`
	Path      string            `json:"path,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Snapshot is the ingest payload: the session plus its page visits and
// any pending submission.
type Snapshot struct {
	Session    Session     `json:"session"`
	Pages      []PageVisit `json:"pages"`
	DeviceInfo *DeviceInfo `json:"deviceInfo,omitempty"`
	Submission *Submission `json:"submission,omitempty"`
}
