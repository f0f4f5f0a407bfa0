package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the planner CLI.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	ExportDir    string
	HistoryFile  string
	Encrypt      bool
	ViewCacheTTL time.Duration
	// Timezone is an IANA name; empty means the system zone.
	Timezone string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "planner.db"
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.ExportDir = "exports"
	c.HistoryFile = ".planner_history"
	c.Encrypt = false
	c.ViewCacheTTL = 30 * time.Second
	c.Timezone = ""
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadConfig builds a Config from defaults, the environment, an optional JSON
// file and args (usually os.Args[1:]). Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}
