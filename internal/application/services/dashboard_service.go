package services

import (
	"errors"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/analytics"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
)

// ErrNoStorage reports that a dashboard query needs a configured database.
var ErrNoStorage = errors.New("analytics storage not configured")

// DefaultTopN caps ranked dashboard lists.
const DefaultTopN = 10

// DashboardService serves aggregated tracking data to the admin dashboard.
type DashboardService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	summaryRepo analytics.SummaryRepository
}

// NewDashboardService creates a new dashboard service. A nil repository
// means persistence is unconfigured and queries fail with ErrNoStorage.
func NewDashboardService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, summaryRepo analytics.SummaryRepository) *DashboardService {
	return &DashboardService{
		logger:      logger,
		perfTracker: perfTracker,
		summaryRepo: summaryRepo,
	}
}

// GetSummary builds the dashboard aggregate for sessions since the given
// cutoff. A zero cutoff defaults to the trailing 24 hours.
func (s *DashboardService) GetSummary(since time.Time, topN int) (*analytics.Summary, error) {
	marker := s.perfTracker.StartOperation("dashboard:summary")
	defer marker.Complete()

	if s.summaryRepo == nil {
		marker.SetSuccess(false)
		return nil, ErrNoStorage
	}

	if since.IsZero() {
		since = time.Now().Add(-24 * time.Hour)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	summary, err := s.summaryRepo.Summarize(since, topN)
	if err != nil {
		marker.SetError(err)
		s.logger.Analytics().Error("Failed to build dashboard summary", "error", err.Error())
		return nil, err
	}

	marker.SetSuccess(true)
	return summary, nil
}
