// Package ratelimit provides a best-effort, process-local login attempt
// limiter keyed by client IP. It deters casual brute force; it is not a
// security boundary against a distributed attacker and its state does
// not survive restarts.
package ratelimit

import (
	"sync"
	"time"
)

// attemptState tracks failed logins for one client IP.
type attemptState struct {
	count          int
	firstAttemptAt time.Time
	blockedUntil   time.Time
}

// LoginLimiter counts failed login attempts per client IP within a
// rolling window and blocks an IP once the threshold is reached.
type LoginLimiter struct {
	maxAttempts int
	window      time.Duration
	blockPeriod time.Duration
	now         func() time.Time

	mu       sync.Mutex
	attempts map[string]*attemptState
}

// NewLoginLimiter creates a limiter with the given threshold, rolling
// window, and block period.
func NewLoginLimiter(maxAttempts int, window, blockPeriod time.Duration) *LoginLimiter {
	return &LoginLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		blockPeriod: blockPeriod,
		now:         time.Now,
		attempts:    make(map[string]*attemptState),
	}
}

// SetClock overrides the limiter's clock. Intended for tests.
func (l *LoginLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Check reports whether the IP may attempt a login. When blocked it
// returns false and how long the caller should wait before retrying.
//
// Note: an attempt window that has fully elapsed is reset here, before
// RecordFailure runs for the current attempt. A near-threshold counter
// straddling the window boundary is therefore cleared rather than
// carried over; the effective threshold is inconsistent across rolling
// windows. This mirrors the original behavior deliberately.
func (l *LoginLimiter) Check(ip string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, exists := l.attempts[ip]
	if !exists {
		return true, 0
	}

	now := l.now()
	if !state.blockedUntil.IsZero() {
		if now.Before(state.blockedUntil) {
			return false, state.blockedUntil.Sub(now)
		}
		delete(l.attempts, ip)
		return true, 0
	}

	if now.Sub(state.firstAttemptAt) > l.window {
		delete(l.attempts, ip)
	}
	return true, 0
}

// RecordFailure registers a failed login for the IP. Reaching the
// threshold starts the block period.
func (l *LoginLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, exists := l.attempts[ip]
	if !exists {
		l.attempts[ip] = &attemptState{count: 1, firstAttemptAt: now}
		return
	}

	state.count++
	if state.count >= l.maxAttempts {
		state.blockedUntil = now.Add(l.blockPeriod)
	}
}

// RecordSuccess clears the counter for the IP after a successful login.
func (l *LoginLimiter) RecordSuccess(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}

// FailureCount returns the current failed-attempt count for an IP.
func (l *LoginLimiter) FailureCount(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if state, exists := l.attempts[ip]; exists {
		return state.count
	}
	return 0
}
