package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/brightforge/brightforge-go/internal/application/services"
	"github.com/brightforge/brightforge-go/internal/domain/analytics"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/brightforge/brightforge-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// DashboardHandlers contains the admin dashboard HTTP handlers
type DashboardHandlers struct {
	dashboardService *services.DashboardService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewDashboardHandlers creates dashboard handlers with injected dependencies
func NewDashboardHandlers(dashboardService *services.DashboardService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DashboardHandlers {
	return &DashboardHandlers{
		dashboardService: dashboardService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// GetSummary handles GET /api/v1/admin/data - aggregate tracking stats.
// Without configured storage it serves a zeroed summary plus a warning
// rather than an error, so the dashboard still renders.
func (h *DashboardHandlers) GetSummary(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_dashboard_summary_request")
	defer marker.Complete()

	if username, ok := middleware.GetAdminUser(c); ok {
		h.logger.Analytics().Debug("Dashboard summary requested", "username", username)
	}

	since := time.Time{}
	if hours, err := strconv.Atoi(c.Query("hours")); err == nil && hours > 0 {
		since = time.Now().Add(-time.Duration(hours) * time.Hour)
	}
	topN, _ := strconv.Atoi(c.Query("top"))

	summary, err := h.dashboardService.GetSummary(since, topN)
	if err != nil {
		if errors.Is(err, services.ErrNoStorage) {
			marker.SetSuccess(true)
			c.JSON(http.StatusOK, gin.H{
				"summary": &analytics.Summary{GeneratedAt: time.Now().UTC()},
				"warning": "analytics storage not configured",
			})
			return
		}
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetSummary request", "duration", marker.Duration, "success", true)
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetOperations handles GET /api/v1/admin/operations - recent server-side
// operation timings for troubleshooting.
func (h *DashboardHandlers) GetOperations(c *gin.Context) {
	within := 15 * time.Minute
	if mins, err := strconv.Atoi(c.Query("minutes")); err == nil && mins > 0 {
		within = time.Duration(mins) * time.Minute
	}

	c.JSON(http.StatusOK, gin.H{
		"recent": h.perfTracker.GetRecentMetrics(within),
		"active": h.perfTracker.GetActiveOperations(),
		"stats":  h.perfTracker.GetOverallStats(),
	})
}
