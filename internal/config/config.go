// Package config loads the service configuration from the environment, with
// an optional YAML file as the base layer. Environment variables always win.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the audit sampling service.
type Config struct {
	// Server
	Port string `yaml:"port"`

	// Audit trail database
	AuditDatabasePath string `yaml:"audit_database_path"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Preview row cap for JSON previews
	PreviewRows int `yaml:"preview_rows"`

	// Rate limiting of criterion runs
	RunsPerMinute int `yaml:"runs_per_minute"`
	RunBurst      int `yaml:"run_burst"`

	// Graceful shutdown window
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Port:              "8080",
		AuditDatabasePath: "./audit.db",
		MaxUploadBytes:    256 << 20, // whole extracts are held in memory
		PreviewRows:       100,
		RunsPerMinute:     30,
		RunBurst:          10,
		ShutdownTimeout:   10 * time.Second,
	}
}

// LoadConfig builds the configuration: defaults, then the optional YAML file
// named by AUDIT_CONFIG_FILE (default config.yaml if present), then
// environment variables.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	path := os.Getenv("AUDIT_CONFIG_FILE")
	optional := path == ""
	if optional {
		path = "config.yaml"
	}
	if err := config.applyFile(path, optional); err != nil {
		return nil, err
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded: port=%s audit_db=%s", config.Port, config.AuditDatabasePath)
	return config, nil
}

func (c *Config) applyFile(path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	log.Printf("Loaded config file: %s", path)
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("AUDIT_DB_PATH"); v != "" {
		c.AuditDatabasePath = v
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxUploadBytes = n
		} else {
			log.Printf("Ignoring invalid MAX_UPLOAD_BYTES=%q", v)
		}
	}
	if v := os.Getenv("PREVIEW_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PreviewRows = n
		} else {
			log.Printf("Ignoring invalid PREVIEW_ROWS=%q", v)
		}
	}
	if v := os.Getenv("RUNS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RunsPerMinute = n
		} else {
			log.Printf("Ignoring invalid RUNS_PER_MINUTE=%q", v)
		}
	}
	if v := os.Getenv("RUN_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RunBurst = n
		} else {
			log.Printf("Ignoring invalid RUN_BURST=%q", v)
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ShutdownTimeout = d
		} else {
			log.Printf("Ignoring invalid SHUTDOWN_TIMEOUT=%q", v)
		}
	}
}
