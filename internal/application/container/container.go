// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"
	"log/slog"

	"github.com/brightforge/brightforge-go/internal/application/services"
	"github.com/brightforge/brightforge-go/internal/infrastructure/email"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/brightforge/brightforge-go/internal/infrastructure/persistence/database"
	persistencetracking "github.com/brightforge/brightforge-go/internal/infrastructure/persistence/tracking"
	persistenceuser "github.com/brightforge/brightforge-go/internal/infrastructure/persistence/user"
	"github.com/brightforge/brightforge-go/internal/infrastructure/ratelimit"
	"github.com/brightforge/brightforge-go/internal/infrastructure/security"
	"github.com/brightforge/brightforge-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker

	DB *database.DB

	IngestService    *services.IngestService
	AuthService      *services.AuthService
	DashboardService *services.DashboardService
	LeadService      *services.LeadService
}

// NewContainer creates and wires all singleton services. Persistence and
// email are optional: when unconfigured the services run in degraded mode
// rather than failing startup.
func NewContainer() (*Container, error) {
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	for _, name := range config.VerboseLogChannels {
		if err := logger.SetChannelLevel(logging.Channel(name), slog.LevelDebug); err != nil {
			logger.Startup().Warn("Ignoring unknown channel in LOG_VERBOSE_CHANNELS", "channel", name)
		}
	}

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	c := &Container{
		Logger:      logger,
		PerfTracker: perfTracker,
	}

	var sessionRepo *persistencetracking.SQLSessionRepository
	var summaryRepo *persistencetracking.SQLSummaryRepository
	var leadRepo *persistenceuser.SQLLeadRepository

	if database.Configured() {
		driverName, dsn, err := database.DriverAndDSN()
		if err != nil {
			return nil, err
		}
		db, err := database.NewConnectionWithLogger(driverName, dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.NewTableCreator().CreateSchema(db.DB); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
		c.DB = db
		sessionRepo = persistencetracking.NewSQLSessionRepository(db, logger)
		summaryRepo = persistencetracking.NewSQLSummaryRepository(db, logger)
		leadRepo = persistenceuser.NewSQLLeadRepository(db, logger)
	} else {
		logger.Startup().Warn("No database configured, tracking runs in acknowledge-only mode")
	}

	emailService, err := email.NewService()
	if err != nil {
		logger.Startup().Warn("Email service disabled", "reason", err.Error())
		emailService = nil
	}

	if config.AuthSecret == "" {
		logger.Startup().Warn("AUTH_SECRET not set, admin login is disabled")
		if suggested, err := security.GenerateSecureKey(64); err == nil {
			logger.Startup().Info("Generate one with a command like", "example", "AUTH_SECRET="+suggested)
		}
	}

	verifier := security.NewPasswordVerifier(config.AdminPassword)
	limiter := ratelimit.NewLoginLimiter(config.LoginMaxAttempts, config.LoginWindow, config.LoginBlockPeriod)

	if sessionRepo != nil {
		c.IngestService = services.NewIngestService(logger, perfTracker, sessionRepo)
	} else {
		c.IngestService = services.NewIngestService(logger, perfTracker, nil)
	}
	c.AuthService = services.NewAuthService(logger, perfTracker, verifier, limiter)
	if summaryRepo != nil {
		c.DashboardService = services.NewDashboardService(logger, perfTracker, summaryRepo)
	} else {
		c.DashboardService = services.NewDashboardService(logger, perfTracker, nil)
	}
	if leadRepo != nil {
		c.LeadService = services.NewLeadService(logger, perfTracker, leadRepo, emailService)
	} else {
		c.LeadService = services.NewLeadService(logger, perfTracker, nil, emailService)
	}

	return c, nil
}

// Close releases infrastructure resources.
func (c *Container) Close() error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return err
		}
	}
	return c.Logger.Close()
}
