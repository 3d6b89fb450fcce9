// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/brightforge/brightforge-go/internal/application/services"
	"github.com/brightforge/brightforge-go/internal/domain/tracking"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandlers contains the tracking ingest HTTP handlers
type AnalyticsHandlers struct {
	ingestService *services.IngestService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(ingestService *services.IngestService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		ingestService: ingestService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// PostSnapshot handles POST /api/v1/analytics - ingests a tracking snapshot
func (h *AnalyticsHandlers) PostSnapshot(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_snapshot_request")
	defer marker.Complete()
	h.logger.Tracking().Debug("Received snapshot", "method", c.Request.Method, "path", c.Request.URL.Path)

	var snap tracking.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		h.logger.Tracking().Warn("Snapshot JSON binding failed", "error", err.Error())
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	result, err := h.ingestService.ProcessSnapshot(&snap, c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrMissingSessionID) {
			marker.SetSuccess(false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
			return
		}
		h.logger.Tracking().Error("Snapshot ingest failed", "error", err.Error(), "duration", time.Since(start))
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store snapshot"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostSnapshot request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{"ok": true, "stored": result.Stored})
}
