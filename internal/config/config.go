package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "unlatex.yaml"

type Config struct {
	Engine struct {
		Bundle           string   `yaml:"bundle"`
		MaxCallStackSize int      `yaml:"max_call_stack_size"`
		DisabledGlobals  []string `yaml:"disabled_globals"` // nil keeps the engine default
	} `yaml:"engine"`
	Format struct {
		PrintWidth   int  `yaml:"print_width"`
		UseTabs      bool `yaml:"use_tabs"`
		TabWidth     int  `yaml:"tab_width"`
		DocumentOnly bool `yaml:"document_only"`
	} `yaml:"format"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the settings used when no config file exists. The format
// section mirrors the command line defaults.
func Default() *Config {
	var cfg Config
	cfg.Engine.Bundle = "vendor/unlatex.umd.js"
	cfg.Format.PrintWidth = 120
	cfg.Format.TabWidth = 2
	cfg.Log.Level = "info"
	return &cfg
}

// LoadConfig reads path on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if bundle := os.Getenv("UNLATEX_BUNDLE"); bundle != "" {
		cfg.Engine.Bundle = bundle
	}
	if level := os.Getenv("UNLATEX_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if depth := os.Getenv("UNLATEX_MAX_CALL_STACK"); depth != "" {
		n, err := strconv.Atoi(depth)
		if err != nil {
			return nil, fmt.Errorf("UNLATEX_MAX_CALL_STACK: %w", err)
		}
		cfg.Engine.MaxCallStackSize = n
	}

	return cfg, nil
}

// SlogLevel converts the configured level name; unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
