// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML config can use "12h" syntax.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ScanConfig holds the scan scheduling durations.
type ScanConfig struct {
	// MinInterval is the minimum re-scan interval per channel.
	MinInterval Duration `yaml:"minInterval"`
	// StaleAfter is the age past which an exhaustive scan no longer
	// counts as fresh.
	StaleAfter Duration `yaml:"staleAfter"`
	// LookBack is the safety margin subtracted from incremental scan
	// watermarks.
	LookBack Duration `yaml:"lookBack"`
}

// RetryConfig holds the remote call retry policy.
type RetryConfig struct {
	MaxRetries     int      `yaml:"maxRetries"`
	InitialBackoff Duration `yaml:"initialBackoff"`
	MaxBackoff     Duration `yaml:"maxBackoff"`
	Multiplier     float64  `yaml:"multiplier"`
}

// Config holds all application configuration.
type Config struct {
	// DataDir is the record store directory.
	DataDir string `yaml:"dataDir"`
	// SeasonsFile is the hand-authored season/episode corpus.
	SeasonsFile string `yaml:"seasonsFile"`
	// PlaylistsFile defines the target playlists.
	PlaylistsFile string `yaml:"playlistsFile"`

	// Channels lists the channel handles or URLs to scan.
	Channels []string `yaml:"channels"`

	// APIKey is the YouTube Data API key. Usually "${YOUTUBE_API_KEY}"
	// in the file, expanded from the environment or .env.
	APIKey string `yaml:"apiKey"`
	// AccessToken is an OAuth access token used for playlist mutations.
	AccessToken string `yaml:"accessToken"`

	// RequestsPerSecond caps outgoing API calls.
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`

	Scan  ScanConfig  `yaml:"scan"`
	Retry RetryConfig `yaml:"retry"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           "data",
		SeasonsFile:       "seasons.yaml",
		PlaylistsFile:     "playlists.yaml",
		RequestsPerSecond: 1.0,
		Scan: ScanConfig{
			MinInterval: Duration(12 * time.Hour),
			StaleAfter:  Duration(30 * 24 * time.Hour),
			LookBack:    Duration(24 * time.Hour),
		},
		Retry: RetryConfig{
			MaxRetries:     5,
			InitialBackoff: Duration(1 * time.Second),
			MaxBackoff:     Duration(30 * time.Second),
			Multiplier:     2.0,
		},
	}
}

// Load reads configuration with priority: env vars > config file >
// defaults. A .env file in the working directory is loaded first, and
// ${VAR} references inside the config file are expanded from the
// environment.
func Load(path string) (*Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.loadFromFile(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		if path != "" {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads the config file at path, or searches the default
// locations when path is empty.
func (c *Config) loadFromFile(path string) error {
	paths := []string{path}
	if path == "" {
		paths = []string{
			"ytcurate.yaml",
			filepath.Join(os.Getenv("HOME"), ".config", "ytcurate", "ytcurate.yaml"),
		}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YTCURATE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("YTCURATE_SEASONS_FILE"); v != "" {
		c.SeasonsFile = v
	}
	if v := os.Getenv("YTCURATE_PLAYLISTS_FILE"); v != "" {
		c.PlaylistsFile = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("YOUTUBE_ACCESS_TOKEN"); v != "" {
		c.AccessToken = v
	}
	if v := os.Getenv("YTCURATE_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("YTCURATE_MIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scan.MinInterval = Duration(d)
		}
	}
	if v := os.Getenv("YTCURATE_STALE_AFTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scan.StaleAfter = Duration(d)
		}
	}
	if v := os.Getenv("YTCURATE_LOOK_BACK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scan.LookBack = Duration(d)
		}
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("dataDir must be set")
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requestsPerSecond must be positive")
	}
	if c.Scan.MinInterval <= 0 {
		return fmt.Errorf("scan.minInterval must be positive")
	}
	if c.Scan.StaleAfter <= 0 {
		return fmt.Errorf("scan.staleAfter must be positive")
	}
	if c.Scan.StaleAfter.Std() < c.Scan.MinInterval.Std() {
		return fmt.Errorf("scan.staleAfter must be >= scan.minInterval")
	}
	if c.Scan.LookBack < 0 {
		return fmt.Errorf("scan.lookBack must be non-negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.maxRetries must be non-negative")
	}
	if c.Retry.InitialBackoff <= 0 {
		return fmt.Errorf("retry.initialBackoff must be positive")
	}
	if c.Retry.MaxBackoff.Std() < c.Retry.InitialBackoff.Std() {
		return fmt.Errorf("retry.maxBackoff must be >= retry.initialBackoff")
	}
	if c.Retry.Multiplier <= 1 {
		return fmt.Errorf("retry.multiplier must be > 1")
	}
	return nil
}
