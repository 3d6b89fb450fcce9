package tracking

import "time"

// SessionRecord is the persisted shape of a session snapshot after the
// server has enriched it with attribution and device facts.
type SessionRecord struct {
	ID             string
	StartedAt      time.Time
	Referrer       string
	ReferrerHost   string
	LandingPath    string
	UTM            map[string]string
	Channel        Channel
	UserAgent      string
	DeviceType     string
	BrowserFamily  string
	BrowserVersion string
	OSFamily       string
	OSVersion      string
	IsBot          bool
	DeviceInfo     *DeviceInfo
	LastSeenAt     time.Time
}

// SessionRepository persists session snapshots. Sessions upsert as whole
// records; page visits and submissions append independently so a failed
// write in one never loses the others.
type SessionRepository interface {
	UpsertSession(rec *SessionRecord) error
	AppendPageVisits(sessionID string, visits []PageVisit) error
	// StoreSubmission records the form event with the channel the session
	// had at submission time.
	StoreSubmission(sessionID string, sub *Submission, channel Channel) error
}
