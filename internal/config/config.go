// Package config loads application configuration: file locations,
// provider credentials, and the tuned policy constants the engines use.
//
// Precedence: environment variables > YAML config file > defaults.
// A .env file in the working directory is loaded first so credentials can
// be kept out of the shell environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Policy holds the temporal tuning constants. The grace and retention
// windows were chosen empirically against upstream API staleness, so they
// are configuration rather than hard-coded invariants.
type Policy struct {
	// GraceWindow keeps events without an end time that started at most
	// this long ago. Tolerates late starts and stale "upcoming" status.
	GraceWindow time.Duration `yaml:"grace_window"`

	// CalendarRetention is the loose fetch-time window for calendar events.
	// Wider than the display filter so recently-ended calendar records can
	// still backfill end times onto API events.
	CalendarRetention time.Duration `yaml:"calendar_retention"`

	// HorizonMonths caps upcoming API events to this many months ahead.
	HorizonMonths int `yaml:"horizon_months"`

	// EnrichBatchSize is the max video IDs per detail request.
	EnrichBatchSize int `yaml:"enrich_batch_size"`

	// ScheduleDepth is the number of schedule segments fetched per channel.
	ScheduleDepth int `yaml:"schedule_depth"`

	// RecentVideoCount is the number of archive videos fetched per channel.
	RecentVideoCount int `yaml:"recent_video_count"`
}

// DefaultPolicy returns the tuned defaults.
func DefaultPolicy() Policy {
	return Policy{
		GraceWindow:       3 * time.Hour,
		CalendarRetention: 24 * time.Hour,
		HorizonMonths:     1,
		EnrichBatchSize:   50,
		ScheduleDepth:     10,
		RecentVideoCount:  5,
	}
}

// Config holds all application configuration.
type Config struct {
	// ConfigFile is the creator registry path.
	ConfigFile string `yaml:"config_file"`

	// CacheFile is the cache store path.
	CacheFile string `yaml:"cache_file"`

	// Credentials. Values from the environment win over the creator
	// registry's persisted fallbacks.
	YouTubeAPIKey      string `yaml:"youtube_api_key"`
	TwitchClientID     string `yaml:"twitch_client_id"`
	TwitchClientSecret string `yaml:"twitch_client_secret"`

	// LogLevel: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Policy Policy `yaml:"policy"`
}

// Default returns configuration with safe defaults. Store files live under
// the user config directory.
func Default() *Config {
	dir := baseDir()
	return &Config{
		ConfigFile: filepath.Join(dir, "creators.json"),
		CacheFile:  filepath.Join(dir, "cache.json"),
		LogLevel:   "warn",
		Policy:     DefaultPolicy(),
	}
}

func baseDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "creatorwatch")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "creatorwatch")
}

// Load loads configuration from .env, the YAML config file, and the
// environment, in increasing precedence.
func Load() (*Config, error) {
	// Optional; missing .env is not an error.
	godotenv.Load()

	cfg := Default()

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads creatorwatch.yaml from CREATORWATCH_CONFIG, the current
// directory, or the user config directory, whichever exists first.
func (c *Config) loadFromFile() error {
	paths := []string{
		os.Getenv("CREATORWATCH_CONFIG"),
		"creatorwatch.yaml",
		filepath.Join(baseDir(), "creatorwatch.yaml"),
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("CREATORWATCH_CONFIG_FILE"); v != "" {
		c.ConfigFile = v
	}
	if v := os.Getenv("CREATORWATCH_CACHE_FILE"); v != "" {
		c.CacheFile = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv("TWITCH_CLIENT_ID"); v != "" {
		c.TwitchClientID = v
	}
	if v := os.Getenv("TWITCH_CLIENT_SECRET"); v != "" {
		c.TwitchClientSecret = v
	}
	if v := os.Getenv("CREATORWATCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CREATORWATCH_GRACE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Policy.GraceWindow = d
		}
	}
	if v := os.Getenv("CREATORWATCH_CALENDAR_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Policy.CalendarRetention = d
		}
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Policy.GraceWindow < 0 {
		return fmt.Errorf("grace_window must not be negative")
	}
	if c.Policy.CalendarRetention < 0 {
		return fmt.Errorf("calendar_retention must not be negative")
	}
	if c.Policy.HorizonMonths <= 0 {
		return fmt.Errorf("horizon_months must be positive")
	}
	if c.Policy.EnrichBatchSize <= 0 || c.Policy.EnrichBatchSize > 50 {
		return fmt.Errorf("enrich_batch_size must be in 1..50")
	}
	return nil
}
