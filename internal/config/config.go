// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Images   ImagesConfig
	HTTP     HTTPConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver   string
	URL      string // full DSN, overrides the discrete fields when set
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite file

	// ServiceURL is an optional elevated connection used for role lookups.
	// The main connection is used when empty.
	ServiceURL string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	Seed       bool
	// SiteURL is the public origin used for redirects after the OAuth callback.
	SiteURL string
}

// AuthConfig holds session and identity-provider settings.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	// JWTSecret verifies bearer tokens locally. When empty, bearer tokens
	// are verified against the auth service instead.
	JWTSecret      string
	JWTAudience    string
	ServiceURL     string
	ServiceAnonKey string
	ServiceTimeout time.Duration
}

// ImagesConfig holds image host credentials for signed uploads.
type ImagesConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// HTTPConfig holds edge middleware settings.
type HTTPConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "destinote"),
			Password: getEnv("DB_PASSWORD", "destinote"),
			DBName:   getEnv("DB_NAME", "destinote"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "destinote.db"),

			ServiceURL: getEnv("SERVICE_DATABASE_URL", ""),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", false),
			Migrations: getEnvBool("MIGRATIONS", true),
			Seed:       getEnvBool("SEED", true),
			SiteURL:    strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		},
		Auth: AuthConfig{
			SessionSecret:  getEnv("SESSION_SECRET", "devsessionsecret"),
			SessionTTL:     getEnvDuration("SESSION_TTL", 14*24*time.Hour),
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			JWTAudience:    getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
			ServiceURL:     strings.TrimRight(getEnv("AUTH_SERVICE_URL", ""), "/"),
			ServiceAnonKey: getEnv("AUTH_SERVICE_ANON_KEY", ""),
			ServiceTimeout: getEnvDuration("AUTH_SERVICE_TIMEOUT", 10*time.Second),
		},
		Images: ImagesConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "destinote"),
		},
		HTTP: HTTPConfig{
			CORSOrigins:       getEnvList("CORS_ORIGINS"),
			RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 120),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// RequiredEnv lists the variables a production deployment must set.
// The debug endpoint reports their presence, never their values.
func RequiredEnv() []string {
	return []string{
		"DATABASE_URL",
		"SESSION_SECRET",
		"AUTH_SERVICE_URL",
		"AUTH_SERVICE_ANON_KEY",
		"AUTH_JWT_SECRET",
		"CLOUDINARY_CLOUD_NAME",
		"CLOUDINARY_API_KEY",
		"CLOUDINARY_API_SECRET",
		"SITE_URL",
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration parses Go duration syntax ("90s", "15m").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
