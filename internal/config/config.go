/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

// GridConfig holds the layout a freshly opened grid starts with.
type GridConfig struct {
	X       int  `yaml:"x"`
	Y       int  `yaml:"y"`
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
	Entries int  `yaml:"entries"`
	Pages   int  `yaml:"pages"`
	Wrap    bool `yaml:"wrap"` // page navigation wraps around
}

type StorageConfig struct {
	Driver     string `yaml:"driver"` // "sqlite" | "postgres"
	SQLitePath string `yaml:"sqlite_path"`
	// PostgresDSN must not carry a password; it lives in the OS keychain.
	PostgresDSN string `yaml:"postgres_dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Grid          GridConfig    `yaml:"grid"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Grid:          GridConfig{X: 0, Y: 0, Width: 800, Height: 600, Entries: 48, Pages: 4, Wrap: true},
		Storage:       StorageConfig{Driver: DriverSQLite},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvGridWidth   = "GPR_GRID_WIDTH"
	EnvGridHeight  = "GPR_GRID_HEIGHT"
	EnvGridEntries = "GPR_GRID_ENTRIES"
	EnvGridPages   = "GPR_GRID_PAGES"
	EnvGridWrap    = "GPR_GRID_WRAP"
	EnvStoreDriver = "GPR_STORE_DRIVER"
	EnvSQLitePath  = "GPR_SQLITE_PATH"
	EnvPGDSN       = "GPR_PG_DSN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GPR_LOG_LEVEL"
	EnvLogFormat = "GPR_LOG_FORMAT"
	EnvLogSource = "GPR_LOG_SOURCE"
	EnvLogFile   = "GPR_LOG_FILE"
	// EnvConfigDir relocates the config directory (tests, portable installs).
	EnvConfigDir = "GPR_CONFIG_DIR"
)

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GridPager")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GridPager")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gridpager")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is reported but the defaults plus env overrides are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if cfg.Storage.SQLitePath == "" {
		if dir, err := ConfigDir(); err == nil {
			cfg.Storage.SQLitePath = filepath.Join(dir, "states.sqlite")
		}
	}
	return cfg, fileErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// grid: offsets may legitimately be zero or negative, copy them directly
	dst.Grid.X = src.Grid.X
	dst.Grid.Y = src.Grid.Y
	if src.Grid.Width > 0 {
		dst.Grid.Width = src.Grid.Width
	}
	if src.Grid.Height > 0 {
		dst.Grid.Height = src.Grid.Height
	}
	if src.Grid.Entries > 0 {
		dst.Grid.Entries = src.Grid.Entries
	}
	if src.Grid.Pages > 0 {
		dst.Grid.Pages = src.Grid.Pages
	}
	dst.Grid.Wrap = src.Grid.Wrap
	// storage
	if v := strings.ToLower(strings.TrimSpace(src.Storage.Driver)); v != "" {
		dst.Storage.Driver = v
	}
	if v := strings.TrimSpace(src.Storage.SQLitePath); v != "" {
		dst.Storage.SQLitePath = v
	}
	if v := strings.TrimSpace(src.Storage.PostgresDSN); v != "" {
		dst.Storage.PostgresDSN = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	positive := func(key string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}
	positive(EnvGridWidth, &cfg.Grid.Width)
	positive(EnvGridHeight, &cfg.Grid.Height)
	positive(EnvGridEntries, &cfg.Grid.Entries)
	positive(EnvGridPages, &cfg.Grid.Pages)
	if v := strings.TrimSpace(os.Getenv(EnvGridWrap)); v != "" {
		cfg.Grid.Wrap = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSQLitePath)); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPGDSN)); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// Validate reports configuration values a grid or store cannot be built from.
func (c AppConfig) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("grid size must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.Entries <= 0 || c.Grid.Pages <= 0 {
		return fmt.Errorf("grid entries and pages must be positive, got %d/%d", c.Grid.Entries, c.Grid.Pages)
	}
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			return errors.New("postgres driver selected without postgres_dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// PostgresURL returns the configured DSN with the keychain password injected.
// The DSN is returned unchanged when no password is stored.
func (c AppConfig) PostgresURL() (string, error) {
	dsn := strings.TrimSpace(c.Storage.PostgresDSN)
	if dsn == "" {
		return "", errors.New("postgres_dsn is empty")
	}
	pw, err := PostgresPassword()
	if err != nil || pw == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse postgres_dsn: %w", err)
	}
	if u.User == nil {
		return dsn, nil
	}
	u.User = url.UserPassword(u.User.Username(), pw)
	return u.String(), nil
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"grid.width":           EnvGridWidth,
		"grid.height":          EnvGridHeight,
		"grid.entries":         EnvGridEntries,
		"grid.pages":           EnvGridPages,
		"grid.wrap":            EnvGridWrap,
		"storage.driver":       EnvStoreDriver,
		"storage.sqlite_path":  EnvSQLitePath,
		"storage.postgres_dsn": EnvPGDSN,
		"logging.level":        EnvLogLevel,
		"logging.format":       EnvLogFormat,
		"logging.source":       EnvLogSource,
		"logging.file":         EnvLogFile,
	}
	env, ok := names[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
