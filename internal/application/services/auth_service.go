package services

import (
	"errors"
	"time"

	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/brightforge/brightforge-go/internal/infrastructure/ratelimit"
	"github.com/brightforge/brightforge-go/internal/infrastructure/security"
	"github.com/brightforge/brightforge-go/pkg/config"
)

// ErrBadCredentials covers every failed login uniformly: wrong username,
// wrong password, or missing configuration all look the same to a caller.
var ErrBadCredentials = errors.New("invalid credentials")

// RateLimitedError signals a blocked client and how long it must wait.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return "too many failed login attempts"
}

// AuthService handles admin dashboard authentication: credential checks,
// session token issue and verification, and login rate limiting.
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	verifier    *security.PasswordVerifier
	limiter     *ratelimit.LoginLimiter
}

// NewAuthService creates a new authentication service.
func NewAuthService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, verifier *security.PasswordVerifier, limiter *ratelimit.LoginLimiter) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
		verifier:    verifier,
		limiter:     limiter,
	}
}

// LoginResult holds a freshly issued admin session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Login validates credentials from the given client IP. Failures count
// against the IP's rate limit window; a success clears it.
func (a *AuthService) Login(username, password, ip string) (*LoginResult, error) {
	marker := a.perfTracker.StartOperation("auth:login")
	defer marker.Complete()

	if allowed, retryAfter := a.limiter.Check(ip); !allowed {
		marker.SetSuccess(false)
		a.logger.Auth().Warn("Login blocked by rate limiter", "ip", ip, "retryAfter", retryAfter)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	if username != config.AdminUsername || !a.verifier.Verify(password) {
		a.limiter.RecordFailure(ip)
		marker.SetSuccess(false)
		a.logger.Auth().Warn("Login failed", "ip", ip, "attempts", a.limiter.FailureCount(ip))
		return nil, ErrBadCredentials
	}

	now := time.Now()
	token, err := security.IssueSessionToken(username, config.AuthSecret, config.SessionTTL, now)
	if err != nil {
		marker.SetError(err)
		a.logger.Auth().Error("Failed to issue session token", "error", err.Error())
		return nil, ErrBadCredentials
	}

	a.limiter.RecordSuccess(ip)
	marker.SetSuccess(true)
	a.logger.Auth().Info("Admin login succeeded", "ip", ip)
	return &LoginResult{Token: token, ExpiresAt: now.Add(config.SessionTTL)}, nil
}

// Verify checks an admin session token. Every invalid token yields the
// same opaque error.
func (a *AuthService) Verify(token string) (*security.SessionClaims, error) {
	return security.VerifySessionToken(token, config.AuthSecret, config.AdminUsername, time.Now())
}
