package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins []string

	// Workflow automation (n8n) delivery
	AutomationWebhookURL  string
	AutomationTimeout     time.Duration
	AutomationMaxAttempts int
	AutomationRetryDelay  time.Duration
	CallbackTokenSecret   string
	CallbackTokenLifetime time.Duration
	ConfirmationPageURL   string

	// Media storage
	AWSRegion           string
	AWSEndpointOverride string
	MediaBucket         string
	MediaPublicBaseURL  string

	// Staff notification email
	NotifyFromEmail string
	NotifyFromName  string
	ClinicEmail     string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		AutomationWebhookURL:  getEnv("AUTOMATION_WEBHOOK_URL", ""),
		AutomationTimeout:     getEnvAsDuration("AUTOMATION_TIMEOUT", 30*time.Second),
		AutomationMaxAttempts: getEnvAsInt("AUTOMATION_MAX_ATTEMPTS", 3),
		AutomationRetryDelay:  getEnvAsDuration("AUTOMATION_RETRY_DELAY", 2*time.Second),
		CallbackTokenSecret:   getEnv("CALLBACK_TOKEN_SECRET", ""),
		CallbackTokenLifetime: getEnvAsDuration("CALLBACK_TOKEN_LIFETIME", 30*24*time.Hour),
		ConfirmationPageURL:   getEnv("CONFIRMATION_PAGE_URL", "/presupuestos/respuesta-confirmada"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		MediaBucket:         getEnv("MEDIA_BUCKET", ""),
		MediaPublicBaseURL:  getEnv("MEDIA_PUBLIC_BASE_URL", ""),

		NotifyFromEmail: getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:  getEnv("NOTIFY_FROM_NAME", "Clinica Dental"),
		ClinicEmail:     getEnv("CLINIC_EMAIL", ""),
	}
}

// Validate rejects configurations that are unsafe to run with. Confirmation
// tokens are HMAC-signed with CallbackTokenSecret; an empty key makes them
// forgeable, so only development may start without one.
func (c *Config) Validate() error {
	if c.CallbackTokenSecret == "" && c.Env != "development" {
		return errors.New("config: CALLBACK_TOKEN_SECRET must be set outside development")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
