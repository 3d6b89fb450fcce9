// Package analytics defines the interfaces for accessing aggregated
// tracking data shown on the admin dashboard.
package analytics

import "time"

// PathCount ranks a page path by how many visits it received.
type PathCount struct {
	Path   string `json:"path"`
	Visits int    `json:"visits"`
}

// ChannelCount ranks an acquisition channel by session count.
type ChannelCount struct {
	Channel  string `json:"channel"`
	Sessions int    `json:"sessions"`
}

// ReferrerCount ranks an external referrer host by session count.
type ReferrerCount struct {
	Host     string `json:"host"`
	Sessions int    `json:"sessions"`
}

// DeviceCount ranks a device type by session count.
type DeviceCount struct {
	DeviceType string `json:"deviceType"`
	Sessions   int    `json:"sessions"`
}

// Summary is the aggregate view served to the admin dashboard.
type Summary struct {
	TotalSessions    int             `json:"totalSessions"`
	SessionsSince    int             `json:"sessionsSince"`
	TotalPageVisits  int             `json:"totalPageVisits"`
	AvgVisitDuration int64           `json:"avgVisitDurationMs"`
	TotalLeads       int             `json:"totalLeads"`
	TopPages         []PathCount     `json:"topPages"`
	Channels         []ChannelCount  `json:"channels"`
	TopReferrers     []ReferrerCount `json:"topReferrers"`
	Devices          []DeviceCount   `json:"devices"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// SummaryRepository computes dashboard aggregates from stored sessions.
type SummaryRepository interface {
	Summarize(since time.Time, topN int) (*Summary, error)
}
