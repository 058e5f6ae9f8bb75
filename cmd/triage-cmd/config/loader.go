// loader.go — Configuration loading with priority cascade.
// Priority: defaults < global config < project config < env vars < flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds all resolved configuration values.
type Config struct {
	DevToolsURL      string `yaml:"devtools_url"`
	Format           string `yaml:"format"`
	LogLevel         string `yaml:"log_level"`
	PollIntervalMS   int    `yaml:"poll_interval_ms"`
	ResolveTimeoutMS int    `yaml:"resolve_timeout_ms"`
	PageSize         int    `yaml:"page_size"`
	MaxPages         int    `yaml:"max_pages"`
	FetchRetries     int    `yaml:"fetch_retries"`
	AllowedStatuses  []int  `yaml:"allowed_statuses"`
}

// FlagOverrides holds values explicitly set via command-line flags.
// Nil pointer means the flag was not set (so lower-priority values are kept).
type FlagOverrides struct {
	DevToolsURL      *string
	Format           *string
	LogLevel         *string
	PollIntervalMS   *int
	ResolveTimeoutMS *int
	PageSize         *int
	MaxPages         *int
	FetchRetries     *int
	AllowedStatuses  []int
}

// Defaults returns the base configuration.
func Defaults() Config {
	return Config{
		Format:           "human",
		LogLevel:         "info",
		PollIntervalMS:   200,
		ResolveTimeoutMS: 30000,
		PageSize:         1000,
		MaxPages:         10000,
		FetchRetries:     0,
		AllowedStatuses:  []int{200, 304},
	}
}

// Load builds the final configuration by applying the priority cascade:
// defaults < global (~/.triage/config.yaml) < project (.triage.yaml) < env vars < flags.
func Load(projectDir string, flags *FlagOverrides) (Config, error) {
	cfg := Defaults()

	home, err := os.UserHomeDir()
	if err == nil {
		if err := loadGlobalConfig(&cfg, filepath.Join(home, ".triage")); err != nil {
			return cfg, fmt.Errorf("global config: %w", err)
		}
	}

	if err := loadProjectConfig(&cfg, projectDir); err != nil {
		return cfg, fmt.Errorf("project config: %w", err)
	}

	if err := loadEnvVars(&cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}

	if flags != nil {
		applyFlags(&cfg, flags)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadGlobalConfig reads ~/.triage/config.yaml if it exists.
func loadGlobalConfig(cfg *Config, triageDir string) error {
	return loadYAMLFile(cfg, filepath.Join(triageDir, "config.yaml"))
}

// loadProjectConfig reads .triage.yaml from the given directory if it exists.
func loadProjectConfig(cfg *Config, dir string) error {
	return loadYAMLFile(cfg, filepath.Join(dir, ".triage.yaml"))
}

// fileConfig uses pointers to distinguish "not set" from zero values.
type fileConfig struct {
	DevToolsURL      *string `yaml:"devtools_url"`
	Format           *string `yaml:"format"`
	LogLevel         *string `yaml:"log_level"`
	PollIntervalMS   *int    `yaml:"poll_interval_ms"`
	ResolveTimeoutMS *int    `yaml:"resolve_timeout_ms"`
	PageSize         *int    `yaml:"page_size"`
	MaxPages         *int    `yaml:"max_pages"`
	FetchRetries     *int    `yaml:"fetch_retries"`
	AllowedStatuses  []int   `yaml:"allowed_statuses"`
}

// loadYAMLFile reads a YAML config file and merges the fields it sets into cfg.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // Missing config file is fine
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.DevToolsURL, fc.DevToolsURL)
	setString(&cfg.Format, fc.Format)
	setString(&cfg.LogLevel, fc.LogLevel)
	setInt(&cfg.PollIntervalMS, fc.PollIntervalMS)
	setInt(&cfg.ResolveTimeoutMS, fc.ResolveTimeoutMS)
	setInt(&cfg.PageSize, fc.PageSize)
	setInt(&cfg.MaxPages, fc.MaxPages)
	setInt(&cfg.FetchRetries, fc.FetchRetries)
	if fc.AllowedStatuses != nil {
		cfg.AllowedStatuses = fc.AllowedStatuses
	}
	return nil
}

// loadEnvVars applies TRIAGE_* environment variable overrides.
func loadEnvVars(cfg *Config) error {
	if v := os.Getenv("TRIAGE_DEVTOOLS_URL"); v != "" {
		cfg.DevToolsURL = v
	}
	if v := os.Getenv("TRIAGE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("TRIAGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"TRIAGE_POLL_INTERVAL_MS", &cfg.PollIntervalMS},
		{"TRIAGE_RESOLVE_TIMEOUT_MS", &cfg.ResolveTimeoutMS},
		{"TRIAGE_PAGE_SIZE", &cfg.PageSize},
		{"TRIAGE_MAX_PAGES", &cfg.MaxPages},
		{"TRIAGE_FETCH_RETRIES", &cfg.FetchRetries},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("TRIAGE_ALLOWED_STATUSES"); v != "" {
		codes, err := ParseStatusList(v)
		if err != nil {
			return fmt.Errorf("TRIAGE_ALLOWED_STATUSES: %w", err)
		}
		cfg.AllowedStatuses = codes
	}
	return nil
}

// applyFlags applies command-line flag overrides (highest priority).
func applyFlags(cfg *Config, flags *FlagOverrides) {
	setString(&cfg.DevToolsURL, flags.DevToolsURL)
	setString(&cfg.Format, flags.Format)
	setString(&cfg.LogLevel, flags.LogLevel)
	setInt(&cfg.PollIntervalMS, flags.PollIntervalMS)
	setInt(&cfg.ResolveTimeoutMS, flags.ResolveTimeoutMS)
	setInt(&cfg.PageSize, flags.PageSize)
	setInt(&cfg.MaxPages, flags.MaxPages)
	setInt(&cfg.FetchRetries, flags.FetchRetries)
	if flags.AllowedStatuses != nil {
		cfg.AllowedStatuses = flags.AllowedStatuses
	}
}

// ParseStatusList parses a comma-separated list of HTTP status codes.
func ParseStatusList(s string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q", part)
		}
		codes = append(codes, n)
	}
	return codes, nil
}

// Validate checks that configuration values are within acceptable ranges.
func (c Config) Validate() error {
	validFormats := map[string]bool{"human": true, "json": true, "csv": true}
	if !validFormats[c.Format] {
		return fmt.Errorf("format must be human, json, or csv, got %q", c.Format)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.PollIntervalMS < 1 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMS)
	}
	if c.ResolveTimeoutMS < 1 {
		return fmt.Errorf("resolve_timeout_ms must be positive, got %d", c.ResolveTimeoutMS)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be positive, got %d", c.MaxPages)
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("fetch_retries must not be negative, got %d", c.FetchRetries)
	}
	for _, code := range c.AllowedStatuses {
		if code < 100 || code > 599 {
			return fmt.Errorf("allowed_statuses: %d is not an HTTP status", code)
		}
	}
	return nil
}

// PollInterval returns the resolver polling interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ResolveTimeout returns the resolver timeout.
func (c Config) ResolveTimeout() time.Duration {
	return time.Duration(c.ResolveTimeoutMS) * time.Millisecond
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
