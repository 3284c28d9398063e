package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "is required"})
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "DB_PATH", Message: "is required for sqlite"})
		}
		if env == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not allowed in production"})
		}
	case "postgres":
		for field, value := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{Field: field, Message: "is required for postgres"})
			}
		}
		if cfg.DBPassword == "" && env.Strict() {
			errs = append(errs, ValidationError{Field: "DB_PASSWORD", Message: "is required"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	// In CI and production the token secret must be supplied explicitly
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "is required"})
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, ValidationError{Field: "LOG_FORMAT", Message: "must be json or console"})
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
