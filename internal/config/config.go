// Package config loads calculator settings.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/zephyrtronium/calc"
)

// Store names a variable persistence backend.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreNone   = "none"
)

// Config holds calculator settings.
type Config struct {
	Precision uint   `json:"precision"`
	Digits    int    `json:"digits"`
	Store     string `json:"store"`     // file, sqlite, or none
	VarsPath  string `json:"vars_path"` // variable file or database
	Watch     bool   `json:"watch"`     // reload variables changed by other processes
	LogLevel  string `json:"log_level"` // debug, info, warn, error, none
	Color     bool   `json:"color"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Precision: calc.DefaultPrec,
		Digits:    calc.DefaultDigits,
		Store:     StoreFile,
		VarsPath:  ".variables",
		LogLevel:  "warn",
		Color:     true,
	}
}

// Load reads settings from a JSON file over the defaults. A missing file
// gives the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("couldn't parse config %s: %w", path, err)
	}
	if config.Precision == 0 {
		config.Precision = calc.DefaultPrec
	}
	if config.Digits == 0 {
		config.Digits = calc.DefaultDigits
	}
	if config.Store == "" {
		config.Store = StoreFile
	}
	if config.VarsPath == "" {
		config.VarsPath = ".variables"
	}
	if config.LogLevel == "" {
		config.LogLevel = "warn"
	}
	return config, config.Validate()
}

// Validate reports settings that can't be used.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite, StoreNone:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Precision > big.MaxPrec {
		return fmt.Errorf("precision %d is too large", c.Precision)
	}
	return nil
}

// LevelNone is above every level slog emits, so it disables logging.
const LevelNone = slog.Level(100)

// ParseLevel converts a level name to a slog level. Unknown names give
// warnings only.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return LevelNone
	default:
		return slog.LevelWarn
	}
}
