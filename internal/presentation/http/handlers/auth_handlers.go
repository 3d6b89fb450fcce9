package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/brightforge/brightforge-go/internal/application/services"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/brightforge/brightforge-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLogin handles POST /api/v1/admin/auth - admin authentication
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_login_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received login request", "method", c.Request.Method, "path", c.Request.URL.Path)

	var loginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		h.logger.Auth().Warn("Login request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	ip := c.ClientIP()
	if ip == "" {
		ip = "direct"
	}

	result, err := h.authService.Login(loginReq.Username, loginReq.Password, ip)
	if err != nil {
		var rateLimited *services.RateLimitedError
		if errors.As(err, &rateLimited) {
			marker.SetSuccess(false)
			seconds := int(rateLimited.RetryAfter.Seconds() + 0.5)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
			return
		}

		marker.SetSuccess(false)
		h.logger.Perf().Info("Performance for PostLogin request", "duration", marker.Duration, "success", false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.SessionCookie, result.Token, maxAge, "/", "", config.SecureCookies, true)

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostLogin request", "duration", marker.Duration, "success", true)
	h.logger.Auth().Info("Login succeeded", "duration", time.Since(start))

	c.JSON(http.StatusOK, gin.H{"ok": true, "expiresAt": result.ExpiresAt.UTC()})
}

// PostLogout handles POST /api/v1/admin/logout - clears the session cookie
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.SessionCookie, "", -1, "/", "", config.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetStatus handles GET /api/v1/admin/status - reports session validity
func (h *AuthHandlers) GetStatus(c *gin.Context) {
	token, err := c.Cookie(config.SessionCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	claims, err := h.authService.Verify(token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"username":      claims.Username,
		"expiresAt":     time.Unix(claims.ExpiresAt, 0).UTC(),
	})
}
