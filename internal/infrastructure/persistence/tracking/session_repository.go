// Package tracking provides the concrete SQL-based implementations of
// the visitor tracking repositories.
package tracking

import (
	"encoding/json"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/tracking"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/persistence/database"
	"github.com/brightforge/brightforge-go/internal/infrastructure/security"
	"github.com/brightforge/brightforge-go/pkg/config"
)

// SQLSessionRepository is the SQL-based implementation of the SessionRepository.
type SQLSessionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSessionRepository creates a new instance of the repository.
func NewSQLSessionRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSessionRepository {
	return &SQLSessionRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertSession writes the session row, replacing mutable columns with the
// latest snapshot. Attribution columns only fill in when previously empty
// so the stored first-touch never regresses.
func (r *SQLSessionRepository) UpsertSession(rec *tracking.SessionRecord) error {
	const query = `
		INSERT INTO sessions (
			id, started_at, referrer, referrer_host, landing_path, utm_params,
			channel, user_agent, device_type, browser_family, browser_version,
			os_family, os_version, is_bot, device_info, last_seen_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			referrer = CASE WHEN sessions.referrer = '' THEN excluded.referrer ELSE sessions.referrer END,
			referrer_host = CASE WHEN sessions.referrer_host = '' THEN excluded.referrer_host ELSE sessions.referrer_host END,
			landing_path = CASE WHEN sessions.landing_path = '' THEN excluded.landing_path ELSE sessions.landing_path END,
			utm_params = excluded.utm_params,
			channel = excluded.channel,
			user_agent = excluded.user_agent,
			device_type = excluded.device_type,
			browser_family = excluded.browser_family,
			browser_version = excluded.browser_version,
			os_family = excluded.os_family,
			os_version = excluded.os_version,
			is_bot = excluded.is_bot,
			device_info = excluded.device_info,
			last_seen_at = excluded.last_seen_at`

	start := time.Now()
	r.logger.Database().Debug("Upserting session", "sessionId", r.logger.SanitizeSessionID(rec.ID))

	utmJSON, err := marshalOrEmpty(rec.UTM)
	if err != nil {
		return err
	}
	deviceJSON, err := marshalOrEmpty(rec.DeviceInfo)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(query,
		rec.ID, rec.StartedAt.UTC(), rec.Referrer, rec.ReferrerHost, rec.LandingPath, utmJSON,
		string(rec.Channel), rec.UserAgent, rec.DeviceType, rec.BrowserFamily, rec.BrowserVersion,
		rec.OSFamily, rec.OSVersion, boolToInt(rec.IsBot), deviceJSON, rec.LastSeenAt.UTC(),
	)
	if err != nil {
		r.logger.Database().Error("Failed to upsert session", "error", err.Error(), "sessionId", r.logger.SanitizeSessionID(rec.ID))
		return err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// AppendPageVisits writes the snapshot's visits. Each visit is identified
// by (session, path, start instant); replayed visits update their end time
// instead of duplicating rows.
func (r *SQLSessionRepository) AppendPageVisits(sessionID string, visits []tracking.PageVisit) error {
	const query = `
		INSERT INTO page_visits (id, session_id, path, started_at, ended_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, path, started_at) DO UPDATE SET
			ended_at = excluded.ended_at,
			duration_ms = excluded.duration_ms`

	if len(visits) == 0 {
		return nil
	}

	start := time.Now()
	for i := range visits {
		v := &visits[i]
		var endedAt any
		if v.EndedAt != nil {
			endedAt = v.EndedAt.UTC()
		}
		var durationMs any
		if v.DurationMs != nil {
			durationMs = *v.DurationMs
		}
		if _, err := r.db.Exec(query, security.GenerateULID(), sessionID, v.Path, v.StartedAt.UTC(), endedAt, durationMs); err != nil {
			r.logger.Database().Error("Failed to append page visit", "error", err.Error(),
				"sessionId", r.logger.SanitizeSessionID(sessionID), "path", v.Path)
			return err
		}
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Appended page visits", "sessionId", r.logger.SanitizeSessionID(sessionID),
		"count", len(visits), "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// StoreSubmission records a form submission event. Replays of the same
// submission are ignored.
func (r *SQLSessionRepository) StoreSubmission(sessionID string, sub *tracking.Submission, channel tracking.Channel) error {
	const query = `
		INSERT INTO submissions (id, session_id, form_id, path, fields, channel, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, form_id, created_at) DO NOTHING`

	start := time.Now()

	fieldsJSON, err := marshalOrEmpty(sub.Fields)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(query, security.GenerateULID(), sessionID, sub.FormID, sub.Path, fieldsJSON, string(channel), sub.CreatedAt.UTC())
	if err != nil {
		r.logger.Database().Error("Failed to store submission", "error", err.Error(),
			"sessionId", r.logger.SanitizeSessionID(sessionID), "formId", sub.FormID)
		return err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func marshalOrEmpty(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case map[string]string:
		if len(t) == 0 {
			return "", nil
		}
	case *tracking.DeviceInfo:
		if t == nil {
			return "", nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
