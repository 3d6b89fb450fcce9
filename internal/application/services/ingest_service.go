// Package services provides application-level orchestration services
package services

import (
	"errors"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/tracking"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/brightforge/brightforge-go/internal/infrastructure/useragent"
)

// ErrMissingSessionID rejects snapshots that cannot be attributed to a session.
var ErrMissingSessionID = errors.New("snapshot has no session id")

// IngestService processes tracking snapshots sent by the browser tracker.
type IngestService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	sessionRepo tracking.SessionRepository
}

// NewIngestService creates a new ingest service. A nil repository means
// persistence is unconfigured: snapshots are acknowledged but not stored.
func NewIngestService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, sessionRepo tracking.SessionRepository) *IngestService {
	return &IngestService{
		logger:      logger,
		perfTracker: perfTracker,
		sessionRepo: sessionRepo,
	}
}

// IngestResult reports what happened to a snapshot.
type IngestResult struct {
	Stored  bool
	Channel tracking.Channel
}

// ProcessSnapshot validates, enriches, and stores one snapshot. Session,
// page visits, and submission are written independently so a failure in
// one write never loses the others.
func (s *IngestService) ProcessSnapshot(snap *tracking.Snapshot, userAgent string) (*IngestResult, error) {
	marker := s.perfTracker.StartOperation("ingest:snapshot")
	defer marker.Complete()

	if snap.Session.ID == "" {
		marker.SetSuccess(false)
		return nil, ErrMissingSessionID
	}

	ua := useragent.Parse(userAgent)
	channel := tracking.InferChannel(snap.Session.UTM, snap.Session.ReferrerHost)

	s.logger.Tracking().Debug("Processing snapshot",
		"sessionId", s.logger.SanitizeSessionID(snap.Session.ID),
		"pages", len(snap.Pages), "channel", channel, "bot", ua.IsBot)

	if s.sessionRepo == nil {
		marker.SetSuccess(true)
		return &IngestResult{Stored: false, Channel: channel}, nil
	}

	rec := &tracking.SessionRecord{
		ID:             snap.Session.ID,
		StartedAt:      startedAtOrNow(snap.Session.StartedAt),
		Referrer:       snap.Session.Referrer,
		ReferrerHost:   snap.Session.ReferrerHost,
		LandingPath:    snap.Session.LandingPath,
		UTM:            snap.Session.UTM,
		Channel:        channel,
		UserAgent:      userAgent,
		DeviceType:     ua.DeviceType,
		BrowserFamily:  ua.BrowserFamily,
		BrowserVersion: ua.BrowserVersion,
		OSFamily:       ua.OSFamily,
		OSVersion:      ua.OSVersion,
		IsBot:          ua.IsBot,
		DeviceInfo:     pickDeviceInfo(snap),
		LastSeenAt:     time.Now().UTC(),
	}

	var firstErr error
	if err := s.sessionRepo.UpsertSession(rec); err != nil {
		firstErr = err
	}
	if err := s.sessionRepo.AppendPageVisits(snap.Session.ID, snap.Pages); err != nil && firstErr == nil {
		firstErr = err
	}
	if snap.Submission != nil {
		if err := s.sessionRepo.StoreSubmission(snap.Session.ID, snap.Submission, channel); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		marker.SetError(firstErr)
		s.logger.Tracking().Error("Snapshot partially stored", "error", firstErr.Error(),
			"sessionId", s.logger.SanitizeSessionID(snap.Session.ID))
		return nil, firstErr
	}

	marker.SetSuccess(true)
	s.logger.Tracking().Info("Snapshot stored",
		"sessionId", s.logger.SanitizeSessionID(snap.Session.ID),
		"pages", len(snap.Pages), "channel", channel)
	return &IngestResult{Stored: true, Channel: channel}, nil
}

func pickDeviceInfo(snap *tracking.Snapshot) *tracking.DeviceInfo {
	if snap.DeviceInfo != nil {
		return snap.DeviceInfo
	}
	return snap.Session.DeviceInfo
}

func startedAtOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
