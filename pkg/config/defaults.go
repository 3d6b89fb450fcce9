// Package config provides centralized default values for BrightForge
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loading configuration overrides from .env file...")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration. Both DatabasePath and TursoDatabaseURL empty
	// means tracking persistence is disabled and ingest acknowledges
	// without storing.
	DatabasePath     string
	TursoDatabaseURL string
	TursoAuthToken   string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int

	// Admin Dashboard Auth
	AdminUsername   string
	AdminPassword   string // plaintext or bcrypt hash; hashed on first use if plaintext
	AuthSecret      string // HMAC signing secret for admin session tokens
	SessionTTL      time.Duration
	SessionCookie   string
	SecureCookies   bool
	JWTSecret       string // lead profile tokens
	ProfileTokenTTL time.Duration

	// Login Rate Limiting
	LoginMaxAttempts int
	LoginWindow      time.Duration
	LoginBlockPeriod time.Duration

	// Observability
	SlowQueryThreshold time.Duration
	VerboseLogChannels []string // log channels forced to debug level
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DatabasePath = getEnvString("DATABASE_PATH", "")
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	// Admin Dashboard Auth
	AdminUsername = getEnvString("ADMIN_USERNAME", "admin")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	AuthSecret = getEnvString("AUTH_SECRET", "")
	SessionTTL = getEnvDuration("ADMIN_SESSION_TTL", 24*time.Hour)
	SessionCookie = getEnvString("ADMIN_SESSION_COOKIE", "admin_session")
	SecureCookies = getEnvString("SECURE_COOKIES", "false") == "true"
	JWTSecret = getEnvString("JWT_SECRET", "")
	ProfileTokenTTL = getEnvDuration("PROFILE_TOKEN_TTL", 30*24*time.Hour)

	// Login Rate Limiting
	LoginMaxAttempts = getEnvInt("LOGIN_MAX_ATTEMPTS", 5)
	LoginWindow = getEnvDuration("LOGIN_ATTEMPT_WINDOW", 10*time.Minute)
	LoginBlockPeriod = getEnvDuration("LOGIN_BLOCK_PERIOD", 15*time.Minute)

	// Observability
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)
	for _, name := range strings.Split(getEnvString("LOG_VERBOSE_CHANNELS", ""), ",") {
		if name = strings.TrimSpace(name); name != "" {
			VerboseLogChannels = append(VerboseLogChannels, name)
		}
	}
}
