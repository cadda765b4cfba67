package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks the configuration and reports every problem in one error.
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.AuditDatabasePath == "" {
		errors = append(errors, "audit database path is required")
	}
	if c.MaxUploadBytes < 1 {
		errors = append(errors, "max upload bytes must be positive")
	}
	if c.PreviewRows < 1 {
		errors = append(errors, "preview rows must be positive")
	}
	if c.RunsPerMinute < 1 {
		errors = append(errors, "runs per minute must be positive")
	}
	if c.RunBurst < 1 {
		errors = append(errors, "run burst must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		errors = append(errors, "shutdown timeout must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
