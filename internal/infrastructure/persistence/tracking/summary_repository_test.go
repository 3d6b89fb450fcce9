package tracking

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	domain "github.com/brightforge/brightforge-go/internal/domain/tracking"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/persistence/database"
)

func quietLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError + 4,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	if err != nil {
		t.Fatalf("NewChanneledLogger: %v", err)
	}
	return logger
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	raw, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	if err := database.NewTableCreator().CreateSchema(raw); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return &database.DB{DB: raw}
}

func closedVisit(path string, startedAt time.Time, duration time.Duration) domain.PageVisit {
	visit := domain.PageVisit{Path: path, StartedAt: startedAt}
	visit.Close(startedAt.Add(duration))
	return visit
}

func TestSummarizeHandlesFractionalAverageDuration(t *testing.T) {
	db := newTestDB(t)
	logger := quietLogger(t)

	sessions := NewSQLSessionRepository(db, logger)
	startedAt := time.Now().UTC().Add(-time.Hour)
	if err := sessions.UpsertSession(&domain.SessionRecord{
		ID:          "sess-avg",
		StartedAt:   startedAt,
		LandingPath: "/",
		Channel:     domain.ChannelDirect,
		DeviceType:  "desktop",
		LastSeenAt:  startedAt,
	}); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	// 100 ms and 101 ms average to 100.5, which SQLite returns as float64.
	visits := []domain.PageVisit{
		closedVisit("/", startedAt, 100*time.Millisecond),
		closedVisit("/pricing", startedAt.Add(time.Second), 101*time.Millisecond),
	}
	if err := sessions.AppendPageVisits("sess-avg", visits); err != nil {
		t.Fatalf("AppendPageVisits: %v", err)
	}

	summary, err := NewSQLSummaryRepository(db, logger).Summarize(startedAt.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.TotalPageVisits != 2 {
		t.Errorf("TotalPageVisits = %d, want 2", summary.TotalPageVisits)
	}
	if summary.AvgVisitDuration != 100 {
		t.Errorf("AvgVisitDuration = %d, want 100", summary.AvgVisitDuration)
	}
	if summary.TotalSessions != 1 || summary.SessionsSince != 1 {
		t.Errorf("sessions = %d/%d, want 1/1", summary.TotalSessions, summary.SessionsSince)
	}
}
