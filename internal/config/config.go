package config

import (
	"os"
	"strconv"
	"time"

	// Local development reads a .env file if one is present.
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	// Database
	DatabaseURL        string
	DBMaxConns         int
	SystemLogRetention time.Duration

	// JWT issued by the external auth service
	JWTSecret string

	// Comma separated user ids promoted to admin at startup
	AdminUserIDs string

	// Server
	Port           string
	CORSOrigins    string
	RequestTimeout time.Duration

	// Notification fan-out; empty disables publishing
	RedisURL     string
	RedisChannel string

	// Reputation
	RoleTiersPath string
	Points        Points

	// Error tracking
	SentryDSN string
	AppEnv    string
	LogLevel  string
}

// Points awarded per ledger action.
type Points struct {
	Create    int
	Edit      int
	Published int
}

func DefaultPoints() Points {
	return Points{Create: 10, Edit: 5, Published: 20}
}

func Load() *Config {
	defaults := DefaultPoints()
	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "postgres=host=localhost user=postgres dbname=regionwiki port=5432 sslmode=disable TimeZone=UTC"),
		DBMaxConns:         parseInt(getEnv("DB_MAX_CONNS", "50"), 50),
		SystemLogRetention: parseDuration(getEnv("SYSTEM_LOG_RETENTION", "720h"), 30*24*time.Hour),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),

		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "10s"), 10*time.Second),

		RedisURL:     getEnv("REDIS_URL", ""),
		RedisChannel: getEnv("REDIS_NOTIFY_CHANNEL", "wiki:notifications"),

		RoleTiersPath: getEnv("ROLE_TIERS_PATH", ""),
		Points: Points{
			Create:    parseInt(getEnv("POINTS_CREATE", ""), defaults.Create),
			Edit:      parseInt(getEnv("POINTS_EDIT", ""), defaults.Edit),
			Published: parseInt(getEnv("POINTS_PUBLISHED", ""), defaults.Published),
		},

		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
