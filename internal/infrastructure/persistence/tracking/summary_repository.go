package tracking

import (
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/analytics"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/persistence/database"
	"github.com/brightforge/brightforge-go/pkg/config"
)

// SQLSummaryRepository computes dashboard aggregates with SQL.
type SQLSummaryRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSummaryRepository creates a new instance of the repository.
func NewSQLSummaryRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSummaryRepository {
	return &SQLSummaryRepository{
		db:     db,
		logger: logger,
	}
}

// Summarize builds the dashboard summary. Bot sessions are excluded from
// every aggregate.
func (r *SQLSummaryRepository) Summarize(since time.Time, topN int) (*analytics.Summary, error) {
	start := time.Now()
	r.logger.Database().Debug("Building dashboard summary", "since", since, "topN", topN)

	summary := &analytics.Summary{GeneratedAt: time.Now().UTC()}

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE is_bot = 0`).Scan(&summary.TotalSessions); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE is_bot = 0 AND started_at >= ?`, since.UTC()).Scan(&summary.SessionsSince); err != nil {
		return nil, err
	}
	// AVG comes back from SQLite as float64; scan it as such before truncating.
	var avgDuration float64
	if err := r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(duration_ms), 0)
		FROM page_visits pv
		JOIN sessions s ON s.id = pv.session_id
		WHERE s.is_bot = 0`).Scan(&summary.TotalPageVisits, &avgDuration); err != nil {
		return nil, err
	}
	summary.AvgVisitDuration = int64(avgDuration)
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM leads`).Scan(&summary.TotalLeads); err != nil {
		return nil, err
	}

	topPages, err := r.topPages(topN)
	if err != nil {
		return nil, err
	}
	summary.TopPages = topPages

	channels, err := r.channelBreakdown()
	if err != nil {
		return nil, err
	}
	summary.Channels = channels

	referrers, err := r.topReferrers(topN)
	if err != nil {
		return nil, err
	}
	summary.TopReferrers = referrers

	devices, err := r.deviceBreakdown()
	if err != nil {
		return nil, err
	}
	summary.Devices = devices

	duration := time.Since(start)
	r.logger.Database().Info("Dashboard summary built", "duration", duration,
		"sessions", summary.TotalSessions, "pageVisits", summary.TotalPageVisits)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("DASHBOARD_SUMMARY", duration)
	}
	return summary, nil
}

func (r *SQLSummaryRepository) topPages(topN int) ([]analytics.PathCount, error) {
	const query = `
		SELECT pv.path, COUNT(*) AS visits
		FROM page_visits pv
		JOIN sessions s ON s.id = pv.session_id
		WHERE s.is_bot = 0
		GROUP BY pv.path
		ORDER BY visits DESC, pv.path ASC
		LIMIT ?`

	rows, err := r.db.Query(query, topN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.PathCount
	for rows.Next() {
		var pc analytics.PathCount
		if err := rows.Scan(&pc.Path, &pc.Visits); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (r *SQLSummaryRepository) channelBreakdown() ([]analytics.ChannelCount, error) {
	const query = `
		SELECT channel, COUNT(*) AS sessions
		FROM sessions
		WHERE is_bot = 0 AND channel != ''
		GROUP BY channel
		ORDER BY sessions DESC, channel ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.ChannelCount
	for rows.Next() {
		var cc analytics.ChannelCount
		if err := rows.Scan(&cc.Channel, &cc.Sessions); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (r *SQLSummaryRepository) topReferrers(topN int) ([]analytics.ReferrerCount, error) {
	const query = `
		SELECT referrer_host, COUNT(*) AS sessions
		FROM sessions
		WHERE is_bot = 0 AND referrer_host != ''
		GROUP BY referrer_host
		ORDER BY sessions DESC, referrer_host ASC
		LIMIT ?`

	rows, err := r.db.Query(query, topN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.ReferrerCount
	for rows.Next() {
		var rc analytics.ReferrerCount
		if err := rows.Scan(&rc.Host, &rc.Sessions); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *SQLSummaryRepository) deviceBreakdown() ([]analytics.DeviceCount, error) {
	const query = `
		SELECT device_type, COUNT(*) AS sessions
		FROM sessions
		WHERE is_bot = 0 AND device_type != ''
		GROUP BY device_type
		ORDER BY sessions DESC, device_type ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.DeviceCount
	for rows.Next() {
		var dc analytics.DeviceCount
		if err := rows.Scan(&dc.DeviceType, &dc.Sessions); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}
