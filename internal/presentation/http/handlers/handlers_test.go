package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brightforge/brightforge-go/internal/application/services"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/brightforge/brightforge-go/internal/infrastructure/ratelimit"
	"github.com/brightforge/brightforge-go/internal/infrastructure/security"
	"github.com/brightforge/brightforge-go/internal/presentation/http/middleware"
	"github.com/brightforge/brightforge-go/pkg/config"
	"github.com/gin-gonic/gin"
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

func newTestRouter(t *testing.T) (*gin.Engine, *ratelimit.LoginLimiter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AdminUsername = "admin"
	config.AuthSecret = "test-secret"
	config.SessionTTL = time.Hour
	config.SessionCookie = "admin_session"

	logger := quietLogger(t)
	tracker := performance.NewTracker(performance.DefaultTrackerConfig())

	verifier := security.NewPasswordVerifier("hunter2")
	limiter := ratelimit.NewLoginLimiter(5, 10*time.Minute, 15*time.Minute)

	ingestService := services.NewIngestService(logger, tracker, nil)
	authService := services.NewAuthService(logger, tracker, verifier, limiter)
	dashboardService := services.NewDashboardService(logger, tracker, nil)

	analyticsHandlers := NewAnalyticsHandlers(ingestService, logger, tracker)
	authHandlers := NewAuthHandlers(authService, logger, tracker)
	dashboardHandlers := NewDashboardHandlers(dashboardService, logger, tracker)

	r := gin.New()
	r.POST("/api/v1/analytics", analyticsHandlers.PostSnapshot)
	r.POST("/api/v1/admin/auth", authHandlers.PostLogin)
	r.GET("/api/v1/admin/status", authHandlers.GetStatus)

	guarded := r.Group("/api/v1/admin")
	guarded.Use(middleware.AdminAuthMiddleware(authService))
	guarded.GET("/data", dashboardHandlers.GetSummary)

	return r, limiter
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostSnapshotRejectsMissingSessionID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(r, "/api/v1/analytics", map[string]any{
		"session": map[string]any{"id": ""},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPostSnapshotAcknowledgesWithoutStorage(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(r, "/api/v1/analytics", map[string]any{
		"session": map[string]any{"id": "sess-abc", "startedAt": time.Now()},
		"pages": []map[string]any{
			{"path": "/", "startedAt": time.Now()},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		OK     bool `json:"ok"`
		Stored bool `json:"stored"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.OK || resp.Stored {
		t.Fatalf("response = %+v, want ok:true stored:false", resp)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(r, "/api/v1/admin/auth", map[string]string{
		"username": "admin", "password": "hunter2",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == config.SessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("session cookie not set on successful login")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie not HttpOnly")
	}
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	r, _ := newTestRouter(t)

	wrongPassword := postJSON(r, "/api/v1/admin/auth", map[string]string{
		"username": "admin", "password": "wrong",
	})
	wrongUsername := postJSON(r, "/api/v1/admin/auth", map[string]string{
		"username": "root", "password": "hunter2",
	})

	if wrongPassword.Code != http.StatusUnauthorized || wrongUsername.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", wrongPassword.Code, wrongUsername.Code)
	}
	if wrongPassword.Body.String() != wrongUsername.Body.String() {
		t.Errorf("rejection bodies differ: %s vs %s", wrongPassword.Body, wrongUsername.Body)
	}
}

func TestLoginRateLimitReturns429WithRetryAfter(t *testing.T) {
	r, _ := newTestRouter(t)

	for i := 0; i < 5; i++ {
		w := postJSON(r, "/api/v1/admin/auth", map[string]string{
			"username": "admin", "password": "wrong",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, w.Code)
		}
	}

	w := postJSON(r, "/api/v1/admin/auth", map[string]string{
		"username": "admin", "password": "hunter2",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing on 429")
	}
}

func TestGuardedRouteRequiresValidCookie(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/data", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: status = %d, want 401", w.Code)
	}

	expired, err := security.IssueSessionToken("admin", config.AuthSecret, -time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/data", nil)
	req.AddCookie(&http.Cookie{Name: config.SessionCookie, Value: expired})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired cookie: status = %d, want 401", w.Code)
	}

	valid, err := security.IssueSessionToken("admin", config.AuthSecret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/data", nil)
	req.AddCookie(&http.Cookie{Name: config.SessionCookie, Value: valid})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid cookie: status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	// With no storage configured the guarded summary is zeroed plus a warning.
	var resp struct {
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if resp.Warning == "" {
		t.Error("expected storage warning in unconfigured summary response")
	}
}

func TestStatusReportsSessionValidity(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Authenticated {
		t.Fatal("unauthenticated request reported as authenticated")
	}

	token, _ := security.IssueSessionToken("admin", config.AuthSecret, time.Hour, time.Now())
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/status", nil)
	req.AddCookie(&http.Cookie{Name: config.SessionCookie, Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Authenticated {
		t.Fatal("valid session reported as unauthenticated")
	}
}
