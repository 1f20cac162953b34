package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

var (
	llmProviders = []string{"none", "gemini"}
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"text", "json"}
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	ports := []struct {
		name string
		port int
	}{
		{"SERVER_PORT", c.Server.Port},
		{"DB_PORT", c.DB.Port},
		{"REDIS_PORT", c.Redis.Port},
	}
	if c.XMPP.Enabled {
		ports = append(ports, struct {
			name string
			port int
		}{"XMPP_COMPONENT_PORT", c.XMPP.ComponentPort})
	}
	for _, p := range ports {
		if p.port < 1 || p.port > 65535 {
			errs = append(errs, fmt.Sprintf("%s must be 1–65535, got %d", p.name, p.port))
		}
	}

	// Chat gateway
	if c.XMPP.Enabled {
		if !c.NATS.Enabled() {
			errs = append(errs, "XMPP_ENABLED requires NATS_URL")
		}
		if c.XMPP.ComponentSecret == "" {
			errs = append(errs, "XMPP_COMPONENT_SECRET is required when XMPP_ENABLED is set")
		}
	}

	// Generative backend
	if !slices.Contains(llmProviders, c.LLM.Provider) {
		errs = append(errs, fmt.Sprintf("LLM_PROVIDER must be one of %s, got %q", strings.Join(llmProviders, ", "), c.LLM.Provider))
	} else if c.LLM.Enabled() && c.LLM.APIKey == "" {
		errs = append(errs, "LLM_API_KEY is required when LLM_PROVIDER is "+c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE must be 0–2, got %g", c.LLM.Temperature))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, "LLM_TIMEOUT must be positive")
	}

	if c.Quota.PerMinute < 0 || c.Quota.PerDay < 0 {
		errs = append(errs, "QUOTA_PER_MINUTE and QUOTA_PER_DAY must not be negative")
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of %s", strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of %s", strings.Join(logFormats, ", ")))
	}

	if c.LLM.Provider == "none" {
		slog.Warn("LLM_PROVIDER is none: replies are templated only")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
