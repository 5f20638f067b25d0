// Package config provides the configuration system for sofaconv.
// It defines a single Config structure used by the CLI and the updater,
// organized into logical sections:
//   - Upstream: where convention sources are enumerated and fetched from
//   - Paths: local cache layout (source and json directories)
//   - HTTP: timeouts and retry behavior for upstream requests
//   - Log: logging level and encoding
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Paths.Conventions = "./conventions"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config is the unified configuration structure for sofaconv.
type Config struct {
	// Upstream describes the remote convention repository
	Upstream UpstreamConfig `yaml:"upstream" json:"upstream"`

	// Paths describes the local cache layout
	Paths PathConfig `yaml:"paths" json:"paths"`

	// HTTP controls timeouts and retries for upstream requests
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Log controls logging output
	Log LogConfig `yaml:"log" json:"log"`
}

// UpstreamConfig describes the remote repository that hosts the
// convention source files.
type UpstreamConfig struct {
	// PageURL is the HTML page listing the convention files
	PageURL string `yaml:"page_url" json:"page_url"`
	// RawURL is the base URL for downloading raw file content
	RawURL string `yaml:"raw_url" json:"raw_url"`
	// Extension selects which linked files are convention sources
	Extension string `yaml:"extension" json:"extension"`
	// ExcludePrefixes lists file name prefixes that are skipped during sync
	ExcludePrefixes []string `yaml:"exclude_prefixes" json:"exclude_prefixes"`
}

// PathConfig describes where convention sources and compiled records live.
type PathConfig struct {
	// Conventions is the root directory of the local cache.
	// Sources go to <Conventions>/source, compiled records to <Conventions>/json.
	Conventions string `yaml:"conventions" json:"conventions"`
}

// HTTPConfig contains timeout and retry settings for upstream requests.
type HTTPConfig struct {
	// RequestTimeout bounds a single HTTP request
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout"`
	// RetryAttempts sets maximum retry attempts for failed requests
	RetryAttempts int `yaml:"retry_attempts" json:"retry_attempts"`
	// RetryDelay is the initial delay between retries
	RetryDelay Duration `yaml:"retry_delay" json:"retry_delay"`
	// RetryMultiplier increases the delay exponentially
	RetryMultiplier float64 `yaml:"retry_multiplier" json:"retry_multiplier"`
	// MaxRetryDelay caps the retry delay
	MaxRetryDelay Duration `yaml:"max_retry_delay" json:"max_retry_delay"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" json:"level"`
	// Encoding is json or console
	Encoding string `yaml:"encoding" json:"encoding"`
	// Development enables colored, stack-traced output
	Development bool `yaml:"development" json:"development"`
}

// Default returns a Config with production defaults pointing at the
// official SOFAtoolbox convention repository.
func Default() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			PageURL: "https://github.com/sofacoustics/SOFAtoolbox/tree/master/" +
				"SOFAtoolbox/conventions",
			RawURL: "https://raw.githubusercontent.com/sofacoustics/SOFAtoolbox/" +
				"master/SOFAtoolbox/conventions",
			Extension:       ".csv",
			ExcludePrefixes: []string{"General_", "GeneralString_"},
		},
		Paths: PathConfig{
			Conventions: "conventions",
		},
		HTTP: HTTPConfig{
			RequestTimeout:  Duration(30 * time.Second),
			RetryAttempts:   3,
			RetryDelay:      Duration(time.Second),
			RetryMultiplier: 2.0,
			MaxRetryDelay:   Duration(30 * time.Second),
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Upstream.PageURL == "" {
		return fmt.Errorf("upstream.page_url is required")
	}
	if c.Upstream.RawURL == "" {
		return fmt.Errorf("upstream.raw_url is required")
	}
	if c.Upstream.Extension == "" {
		return fmt.Errorf("upstream.extension is required")
	}
	if c.Paths.Conventions == "" {
		return fmt.Errorf("paths.conventions is required")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be positive")
	}
	if c.HTTP.RetryAttempts < 0 {
		return fmt.Errorf("http.retry_attempts must not be negative")
	}
	return nil
}

// SourceDir returns the directory holding cached convention sources
func (c *Config) SourceDir() string {
	return filepath.Join(c.Paths.Conventions, "source")
}

// JSONDir returns the directory holding compiled convention records
func (c *Config) JSONDir() string {
	return filepath.Join(c.Paths.Conventions, "json")
}
