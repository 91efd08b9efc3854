package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL   string
	RunMigrations bool

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Currency given to new accounts that do not pick one
	DefaultCurrency string

	// Storage
	StoragePath     string
	MaxReceiptBytes int64

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey             string
	FromEmail                string
	AppURL                   string
	EnableEmailNotifications bool

	// Debt reminders
	ReminderInterval  time.Duration
	ReminderLookahead time.Duration

	// Assistant (Gemini)
	GeminiAPIKey           string
	GeminiModel            string
	AssistantRatePerMinute int
	InsightsTTL            time.Duration

	// Ledger snapshot cache
	SnapshotTTL time.Duration

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		RunMigrations:            getEnvAsBool("RUN_MIGRATIONS", true),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTExpirationHours:       getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		DefaultCurrency:          strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		StoragePath:              getEnv("STORAGE_PATH", "./storage"),
		MaxReceiptBytes:          int64(getEnvAsInt("MAX_RECEIPT_BYTES", 8<<20)),
		WorkerCount:              getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:           getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:             getEnv("RESEND_API_KEY", ""),
		FromEmail:                getEnv("FROM_EMAIL", "noreply@vantrack.app"),
		AppURL:                   getEnv("APP_URL", "http://localhost:5173"),
		EnableEmailNotifications: getEnvAsBool("ENABLE_EMAIL_NOTIFICATIONS", false),
		ReminderInterval:         getEnvAsDuration("REMINDER_INTERVAL", 24*time.Hour),
		ReminderLookahead:        getEnvAsDuration("REMINDER_LOOKAHEAD", 24*time.Hour),
		GeminiAPIKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:              getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AssistantRatePerMinute:   getEnvAsInt("ASSISTANT_RATE_PER_MINUTE", 10),
		InsightsTTL:              getEnvAsDuration("INSIGHTS_TTL", time.Hour),
		SnapshotTTL:              getEnvAsDuration("SNAPSHOT_TTL", 5*time.Minute),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if cfg.AssistantRatePerMinute <= 0 {
		return nil, fmt.Errorf("ASSISTANT_RATE_PER_MINUTE must be positive")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings such as "90m" or "24h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
