// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "WEBWX_CONFIG"

// Config is the bot configuration.
type Config struct {
	// Mode selects the protocol flavor: "normal" (web) or "desktop"
	// (desktop client impersonation). Accounts that the web flavor
	// refuses usually succeed with "desktop".
	Mode string `yaml:"mode"`

	// Storage configures the hot-reload snapshot file.
	Storage StorageConfig `yaml:"storage"`

	// Login configures the QR login poll.
	Login LoginConfig `yaml:"login"`

	// Sync configures the long-poll sync loop.
	Sync SyncConfig `yaml:"sync"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// StorageConfig configures snapshot persistence.
type StorageConfig struct {
	// Path is the snapshot file. Default: storage.json
	Path string `yaml:"path"`

	// PassphraseFile, when set, names a file whose first line is the
	// passphrase used to encrypt the snapshot at rest.
	PassphraseFile string `yaml:"passphrase_file"`
}

// LoginConfig configures the QR login poll.
type LoginConfig struct {
	// PollInterval separates consecutive login status checks while
	// waiting for the QR code to be scanned and confirmed.
	// Default: 1s
	PollInterval time.Duration `yaml:"poll_interval"`
}

// SyncConfig configures the sync loop.
type SyncConfig struct {
	// Interval is the pause after each sync cycle. Default: 1s
	Interval time.Duration `yaml:"interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Mode: "normal",
		Storage: StorageConfig{
			Path: "storage.json",
		},
		Login: LoginConfig{
			PollInterval: time.Second,
		},
		Sync: SyncConfig{
			Interval: time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by WEBWX_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, layered over Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so the stripped document goes
		// through the same decoder and gets the same duration handling.
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// ReadPassphrase returns the snapshot passphrase, or "" when
// Storage.PassphraseFile is unset.
func (c *Config) ReadPassphrase() (string, error) {
	if c.Storage.PassphraseFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Storage.PassphraseFile)
	if err != nil {
		return "", fmt.Errorf("config: reading passphrase file: %w", err)
	}
	passphrase, _, _ := strings.Cut(string(data), "\n")
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return "", fmt.Errorf("config: passphrase file %s is empty", c.Storage.PassphraseFile)
	}
	return passphrase, nil
}

func (c *Config) expandVariables() {
	c.Storage.Path = expandVars(c.Storage.Path)
	c.Storage.PassphraseFile = expandVars(c.Storage.PassphraseFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Mode != "normal" && c.Mode != "desktop" {
		errs = append(errs, fmt.Errorf("mode must be normal or desktop, got %q", c.Mode))
	}
	if c.Storage.Path == "" {
		errs = append(errs, fmt.Errorf("storage.path is required"))
	}
	if c.Login.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("login.poll_interval must be positive"))
	}
	if c.Sync.Interval <= 0 {
		errs = append(errs, fmt.Errorf("sync.interval must be positive"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}
