package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment             string
	HTTPPort                string
	DatabaseURL             string
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	AdminEmails             []string
	UserEmailPattern        string
	MinPasswordLength       int
	ProviderPageSize        int
	ServiceName             string
	RateLimitRPM            int
	TelemetryEndpoint       string
	TelemetryInsecure       bool
	CORSAllowedOrigins      []string
	CORSAllowedMethods      []string
	CORSAllowedHeaders      []string
	CORSAllowCredentials    bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:             getEnv("APP_ENV", "development"),
		HTTPPort:                getEnv("HTTP_PORT", "8080"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		FirebaseProjectID:       os.Getenv("FB_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FB_CREDENTIALS_FILE"),
		AdminEmails:             getList("ADMIN_EMAILS", nil),
		UserEmailPattern:        getEnv("USER_EMAIL_PATTERN", `(?i)^[^\s@]+@ilovesalt\.com$`),
		MinPasswordLength:       getInt("MIN_PASSWORD_LENGTH", 8),
		ProviderPageSize:        getInt("PROVIDER_PAGE_SIZE", 1000),
		ServiceName:             getEnv("SERVICE_NAME", "new-salt"),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 600),
		TelemetryEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:       getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		CORSAllowedOrigins:      getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedMethods:      getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		CORSAllowedHeaders:      getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
		CORSAllowCredentials:    getBool("CORS_ALLOW_CREDENTIALS", false),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ProviderPageSize <= 0 || cfg.ProviderPageSize > 1000 {
		cfg.ProviderPageSize = 1000
	}
	if cfg.MinPasswordLength < 8 {
		cfg.MinPasswordLength = 8
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
