// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Ops Manager API credentials and target project.
	BaseURL    string
	PublicKey  string
	PrivateKey string
	OrgID      string
	ProjectID  string

	// mongocli invocation settings.
	MongoCLIBin string

	RequestTimeout time.Duration
	APIRateLimit   float64
	CLIRateLimit   float64

	// InsecureSkipVerify disables TLS certificate checks. Ops Manager test
	// deployments routinely run with self-signed certificates, so this
	// defaults to true.
	InsecureSkipVerify bool

	LogLevel string
}

// LoadFromEnv reads configuration from environment variables with sensible
// defaults. Malformed values fail here; required-field checks live in
// Validate so command-line flags can fill the gaps first.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		BaseURL:     os.Getenv("OM_BASE_URL"),
		PublicKey:   os.Getenv("OM_PUBLIC_KEY"),
		PrivateKey:  os.Getenv("OM_PRIVATE_KEY"),
		OrgID:       os.Getenv("OM_ORG_ID"),
		ProjectID:   os.Getenv("OM_PROJECT_ID"),
		MongoCLIBin: envOr("OM_MONGOCLI_BINARY", "mongocli"),
		LogLevel:    envOr("OM_LOG_LEVEL", "info"),
	}

	timeout, err := time.ParseDuration(envOr("OM_REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid OM_REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = timeout

	apiRate, err := strconv.ParseFloat(envOr("OM_API_RATE_LIMIT", "5"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid OM_API_RATE_LIMIT: %w", err)
	}
	if apiRate <= 0 {
		return Config{}, fmt.Errorf("config: OM_API_RATE_LIMIT must be positive, got %v", apiRate)
	}
	cfg.APIRateLimit = apiRate

	cliRate, err := strconv.ParseFloat(envOr("OM_CLI_RATE_LIMIT", "2"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid OM_CLI_RATE_LIMIT: %w", err)
	}
	if cliRate <= 0 {
		return Config{}, fmt.Errorf("config: OM_CLI_RATE_LIMIT must be positive, got %v", cliRate)
	}
	cfg.CLIRateLimit = cliRate

	insecure, err := strconv.ParseBool(envOr("OM_INSECURE_SKIP_VERIFY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid OM_INSECURE_SKIP_VERIFY: %w", err)
	}
	cfg.InsecureSkipVerify = insecure

	return cfg, nil
}

// Validate checks that every field required to reach an Ops Manager
// deployment is present.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: OM_BASE_URL (or --base-url) required")
	}
	if c.PublicKey == "" {
		return fmt.Errorf("config: OM_PUBLIC_KEY (or --public-key) required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("config: OM_PRIVATE_KEY (or --private-key) required")
	}
	if c.OrgID == "" {
		return fmt.Errorf("config: OM_ORG_ID (or --org-id) required")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("config: OM_PROJECT_ID (or --project-id) required")
	}
	return nil
}

// MongoCLIEnv returns the MCLI_* environment entries mongocli expects,
// derived from the Ops Manager credentials.
func (c Config) MongoCLIEnv() []string {
	return []string{
		"MCLI_OPS_MANAGER_URL=" + c.BaseURL,
		"MCLI_PUBLIC_API_KEY=" + c.PublicKey,
		"MCLI_PRIVATE_API_KEY=" + c.PrivateKey,
		"MCLI_ORG_ID=" + c.OrgID,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
