package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer    string // Issuer claim for access tokens (default: peakform-admin)
	JWTSecret string // Required: HS256 signing secret, min 32 bytes
	BaseURL   string // Public base URL used in invitation links (default: http://localhost:8080)

	DatabaseFile string // Path to SQLite database file (default: ./admin.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)
	AvatarDir    string // Directory for uploaded avatars (default: ./avatars)

	SendGridAPIKey string // Optional: invitation emails are only logged when unset
	MailFromName   string // Sender display name (default: PeakForm)
	MailFromAddr   string // Sender address (default: no-reply@peakform.local)

	BootstrapAdminName     string // Optional: first admin account, created on an empty database
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	AccessTokenTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Refresh token lifetime (default: 720h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:    getEnvOrDefault("ADMIN_ISSUER", "peakform-admin"),
		JWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		BaseURL:   getEnvOrDefault("ADMIN_BASE_URL", "http://localhost:8080"),

		DatabaseFile: getEnvOrDefault("ADMIN_DATABASE_FILE", "admin.db"),
		PepperFile:   getEnvOrDefault("ADMIN_PEPPER_FILE", "pepper"),
		AvatarDir:    getEnvOrDefault("ADMIN_AVATAR_DIR", "avatars"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFromName:   getEnvOrDefault("MAIL_FROM_NAME", "PeakForm"),
		MailFromAddr:   getEnvOrDefault("MAIL_FROM_ADDR", "no-reply@peakform.local"),

		BootstrapAdminName:     os.Getenv("ADMIN_BOOTSTRAP_NAME"),
		BootstrapAdminEmail:    os.Getenv("ADMIN_BOOTSTRAP_EMAIL"),
		BootstrapAdminPassword: os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"),

		AccessTokenTTL:  getEnvDurationOrDefault("ADMIN_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDurationOrDefault("ADMIN_REFRESH_TOKEN_TTL", 30*24*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
