package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Admin credential (single shared login for the dashboard).
	// AdminPassword accepts either a plain value (development) or a bcrypt
	// hash (recognized by its $2 prefix) for production deployments.
	AdminUsername string
	AdminPassword string

	// Admin session lifetime. Defaults to 30 days.
	SessionDuration time.Duration

	// SMTP configuration for quote emails.
	// An empty SMTP_HOST means the mail collaborator is not configured;
	// quote sending then falls back to mailto links.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Application base URL (for booking-completion links)
	BaseURL string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		SessionDuration: getEnvDuration("SESSION_DURATION", 30*24*time.Hour),

		// SMTP port default matches Mailhog (development)
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@gascert.app"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Gas Safety Team"),

		// Base URL defaults to localhost for development
		BaseURL: strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:8080"), "/"),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.AdminPassword == "" {
		if cfg.Env == "development" {
			cfg.AdminPassword = "admin123"
		} else {
			return nil, fmt.Errorf("ADMIN_PASSWORD is required outside development")
		}
	}

	if cfg.SessionDuration <= 0 {
		return nil, fmt.Errorf("SESSION_DURATION must be positive, got: %s", cfg.SessionDuration)
	}

	return cfg, nil
}

// MailConfigured reports whether the SMTP collaborator has enough
// configuration to send quote emails.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
