package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/brightforge/brightforge-go/internal/application/services"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// LeadHandlers contains the lead capture HTTP handlers
type LeadHandlers struct {
	leadService *services.LeadService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewLeadHandlers creates lead handlers with injected dependencies
func NewLeadHandlers(leadService *services.LeadService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LeadHandlers {
	return &LeadHandlers{
		leadService: leadService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLead handles POST /api/v1/leads - captures a form submission
func (h *LeadHandlers) PostLead(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_lead_request")
	defer marker.Complete()
	h.logger.Leads().Debug("Received lead submission", "method", c.Request.Method, "path", c.Request.URL.Path)

	var req services.CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Leads().Warn("Lead request JSON binding failed", "error", err.Error())
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	result, err := h.leadService.CaptureLead(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLead) {
			marker.SetSuccess(false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "first name and email are required"})
			return
		}
		h.logger.Leads().Error("Lead capture failed", "error", err.Error(), "duration", time.Since(start))
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to capture lead"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostLead request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"stored":       result.Stored,
		"leadId":       result.Lead.ID,
		"profileToken": result.ProfileToken,
	})
}

// GetDecodeProfile handles GET /api/v1/leads/profile - decodes a profile token
func (h *LeadHandlers) GetDecodeProfile(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}

	profile := h.leadService.DecodeProfileToken(authHeader[7:])
	if profile == nil {
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
