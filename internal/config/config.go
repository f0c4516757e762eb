package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"netdash/internal/period"
	"netdash/internal/storage"
)

// Config holds all configuration for netdash
type Config struct {
	APIURL          string
	Timeout         time.Duration
	RefreshInterval time.Duration
	AutoRefresh     bool
	Period          string
	RecentLimit     int
	AbsoluteRange   bool

	AppName      string
	ExportDir    string
	CaptureDelay time.Duration

	DatabasePath     string
	ArchiveRetention time.Duration
	ArchiveSchedule  string

	Listen         string
	AllowedOrigins []string

	LogFile  string
	LogLevel string

	S3 storage.Config
}

// Selector parses the configured start period
func (c *Config) Selector() (period.Selector, error) {
	return period.ParseSelector(c.Period, time.Local)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("recent_limit must be positive")
	}
	sel, err := c.Selector()
	if err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if _, err := period.Resolve(sel, time.Now()); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if c.AppName == "" {
		return fmt.Errorf("app_name cannot be empty")
	}
	if c.CaptureDelay < 0 {
		return fmt.Errorf("capture_delay cannot be negative")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.ArchiveSchedule == "" {
		return fmt.Errorf("archive_schedule cannot be empty")
	}
	if c.ArchiveRetention < 0 {
		return fmt.Errorf("archive_retention cannot be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error")
	}
	if c.S3.Endpoint != "" && c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when s3.endpoint is set")
	}
	return nil
}
