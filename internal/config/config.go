// Package config loads groqgen settings from defaults, a groqgen.yaml file,
// GROQGEN_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"fmt"
	"slices"
)

// File names searched for, in order, when no config file is given.
var FileNames = []string{"groqgen.yaml", "groqgen.yml"}

// Defaults.
const (
	DefaultHistoryPath = ".groqgen/history.db"
	DefaultFormat      = "text"
	DefaultLogLevel    = "warn"
	DefaultCacheSize   = 256
)

// DefaultInclude selects every supported source file under the root.
var DefaultInclude = []string{"**/*.{ts,tsx,mts,cts,js,jsx,mjs,cjs}"}

// ValidFormats are the accepted output formats.
var ValidFormats = []string{"text", "json"}

// Config is the resolved configuration. Paths are absolute once returned by
// Load.
type Config struct {
	Schema   string   `koanf:"schema"`
	Manifest string   `koanf:"manifest"`
	Root     string   `koanf:"root"`
	Include  []string `koanf:"include"`
	Exclude  []string `koanf:"exclude"`
	Output   string   `koanf:"output"`
	History  string   `koanf:"history"`

	Workers   int `koanf:"workers"`
	CacheSize int `koanf:"cache_size"`

	Format  string    `koanf:"format"`
	Verbose bool      `koanf:"verbose"`
	Log     LogConfig `koanf:"log"`

	// ProjectRoot is the directory relative paths from the config file,
	// environment and defaults are resolved against.
	ProjectRoot string `koanf:"-"`

	// File is the config file that was loaded, or empty.
	File string `koanf:"-"`
}

// LogConfig configures diagnostics logging.
type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

func defaults() map[string]any {
	return map[string]any{
		"root":       ".",
		"include":    DefaultInclude,
		"history":    DefaultHistoryPath,
		"cache_size": DefaultCacheSize,
		"format":     DefaultFormat,
		"verbose":    false,
		"log.level":  DefaultLogLevel,
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must not be negative", c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache_size %d: must not be negative", c.CacheSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}
