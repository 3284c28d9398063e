package config

import (
	"os"
	"strings"
)

// Environment is the deployment stage the process runs in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads CI=true first, then ENV. Unknown or empty values mean development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := Environment(strings.ToLower(strings.TrimSpace(os.Getenv("ENV")))); env {
	case Production, Test, Development:
		return env
	default:
		return Development
	}
}

// Local reports whether the environment runs on a developer machine, where .env files and
// built-in secrets are acceptable.
func (e Environment) Local() bool {
	return e == Development || e == Test
}

// Strict reports whether credentials must be supplied explicitly
func (e Environment) Strict() bool {
	return e == Production || e == CI
}

func IsProduction() bool {
	return GetEnvironment() == Production
}
