package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite file
	Migrations string

	// Redis configuration, rate limiting is disabled when RedisHost and RedisURL are empty
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Recipe images go to S3 when S3Bucket is set, otherwise under MediaRoot
	S3Bucket  string
	AWSRegion string
	MediaRoot string
	MediaURL  string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig builds a Config from the environment. Values are read from environment
// variables first, then from Docker secrets, then fall back to development defaults.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env.Local() {
		// A missing .env is fine, the process environment may already be populated
		_ = godotenv.Load()
	}

	redisDB, err := strconv.Atoi(lookup("REDIS_DB", "redis_db", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		ServerPort:    lookup("SERVER_PORT", "server_port", "8080"),
		ServerHost:    lookup("SERVER_HOST", "server_host", "0.0.0.0"),
		DBDriver:      strings.ToLower(lookup("DB_DRIVER", "db_driver", "sqlite")),
		DBHost:        lookup("DB_HOST", "db_host", "localhost"),
		DBPort:        lookup("DB_PORT", "db_port", "5432"),
		DBUser:        lookup("DB_USER", "db_user", "postgres"),
		DBPassword:    lookup("DB_PASSWORD", "db_password", ""),
		DBName:        lookup("DB_NAME", "db_name", "foodgram"),
		DBSSLMode:     lookup("DB_SSL_MODE", "db_ssl_mode", "disable"),
		DBPath:        lookup("DB_PATH", "db_path", "foodgram.db"),
		Migrations:    lookup("MIGRATIONS_DIR", "migrations_dir", "migrations"),
		RedisHost:     lookup("REDIS_HOST", "redis_host", ""),
		RedisPort:     lookup("REDIS_PORT", "redis_port", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", "redis_password", ""),
		RedisDB:       redisDB,
		RedisURL:      lookup("REDIS_URL", "redis_url", ""),
		JWTSecret:     lookup("JWT_SECRET", "jwt_secret", ""),
		S3Bucket:      lookup("S3_BUCKET_NAME", "s3_bucket_name", ""),
		AWSRegion:     lookup("AWS_REGION", "aws_region", "us-east-1"),
		MediaRoot:     lookup("MEDIA_ROOT", "media_root", "media"),
		MediaURL:      lookup("MEDIA_URL", "media_url", "/media/"),
		LogLevel:      lookup("LOG_LEVEL", "log_level", "info"),
		LogFormat:     lookup("LOG_FORMAT", "log_format", defaultLogFormat(env)),
	}

	if cfg.JWTSecret == "" && env.Local() {
		cfg.JWTSecret = "dev-secret-change-me"
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// PostgresDSN returns the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a Redis endpoint is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func defaultLogFormat(env Environment) string {
	if env == Development {
		return "console"
	}
	return "json"
}

// lookup resolves a value from the environment, then the secrets directory, then def
func lookup(envKey, secretName, def string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
