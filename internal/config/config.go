// Package config loads notekeeper's configuration from an optional JSONC
// file with CLI overrides on top.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the default config file name, looked up in the working
// directory when no explicit path is given.
const ConfigFileName = "notekeeper.json"

// Validation and load errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data_dir cannot be empty")
	ErrWarehouseEmpty     = errors.New("warehouse_dir cannot be empty")
	ErrIntervalInvalid    = errors.New("interval_seconds must be positive")
	ErrConcurrencyInvalid = errors.New("concurrency must be positive")
)

// Config holds all configuration options.
type Config struct {
	// DataDir is the root of the note tree to maintain.
	DataDir string `json:"data_dir"`

	// WarehouseDir is the directory name (one path segment under DataDir)
	// that storage paths are computed relative to.
	WarehouseDir string `json:"warehouse_dir"`

	// TrashDir names the trash directory skipped by untitled-note cleanup.
	TrashDir string `json:"trash_dir"`

	// UntitledPrefix marks notes eligible for cleanup, compared
	// case-insensitively against the file name.
	UntitledPrefix string `json:"untitled_prefix"`

	// StateFile is where the last pass report is written. Empty disables
	// the report.
	StateFile string `json:"state_file,omitempty"`

	IntervalSeconds int  `json:"interval_seconds"`
	Concurrency     int  `json:"concurrency"`
	SyncDates       bool `json:"sync_dates"`
	Watch           bool `json:"watch"`
	DryRun          bool `json:"dry_run"`

	LogLevel string `json:"log_level"`

	// Source is the config file that was loaded, empty when running on
	// defaults plus overrides only. Not serialized.
	Source string `json:"-"`
}

// Default returns the default configuration. WarehouseDir has no usable
// default and must come from the file or an override.
func Default() Config {
	return Config{
		DataDir:         "/data",
		TrashDir:        ".trash",
		UntitledPrefix:  "untitled",
		IntervalSeconds: 60,
		Concurrency:     64,
		LogLevel:        "info",
	}
}

// Interval returns the pass cadence as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LoadInput holds the inputs for Load. Override fields apply on top of the
// file; zero-valued string overrides mean "not set".
type LoadInput struct {
	ConfigPath string // --config flag value; if set, the file must exist

	DataDir  string // --data-dir override
	LogLevel string // --log-level override
	DryRun   *bool  // --dry-run override
	Watch    *bool  // --watch override
}

// Load builds the configuration with the following precedence
// (highest wins):
//  1. Defaults
//  2. Config file (explicit path, or ./notekeeper.json if present)
//  3. CLI overrides
//
// DataDir is resolved to an absolute path.
func Load(input LoadInput) (Config, error) {
	cfg := Default()

	fileCfg, source, err := loadFile(input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	if source != "" {
		cfg = merge(cfg, fileCfg)
		cfg.Source = source
	}

	if input.DataDir != "" {
		cfg.DataDir = input.DataDir
	}

	if input.LogLevel != "" {
		cfg.LogLevel = input.LogLevel
	}

	if input.DryRun != nil {
		cfg.DryRun = *input.DryRun
	}

	if input.Watch != nil {
		cfg.Watch = *input.Watch
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	if !filepath.IsAbs(cfg.DataDir) {
		abs, absErr := filepath.Abs(cfg.DataDir)
		if absErr != nil {
			return Config{}, fmt.Errorf("resolve data_dir: %w", absErr)
		}

		cfg.DataDir = abs
	}

	return cfg, nil
}

// loadFile reads and parses the config file. An explicit path must exist;
// the default file is optional. Returns the parsed config and the path it
// was loaded from, or an empty path when no file was used.
func loadFile(explicit string) (Config, string, error) {
	path := explicit
	mustExist := explicit != ""

	if path == "" {
		path = ConfigFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return Config{}, "", nil
		}

		// the file exists but cannot be read; not-found would hide the cause
		return Config{}, "", fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, parseErr := parse(data)
	if parseErr != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, path, nil
}

func parse(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

// merge lays overlay's set fields over base. Booleans from the file always
// apply; their zero value is the default anyway.
func merge(base, overlay Config) Config {
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}

	if overlay.WarehouseDir != "" {
		base.WarehouseDir = overlay.WarehouseDir
	}

	if overlay.TrashDir != "" {
		base.TrashDir = overlay.TrashDir
	}

	if overlay.UntitledPrefix != "" {
		base.UntitledPrefix = overlay.UntitledPrefix
	}

	if overlay.StateFile != "" {
		base.StateFile = overlay.StateFile
	}

	if overlay.IntervalSeconds != 0 {
		base.IntervalSeconds = overlay.IntervalSeconds
	}

	if overlay.Concurrency != 0 {
		base.Concurrency = overlay.Concurrency
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	base.SyncDates = overlay.SyncDates
	base.Watch = overlay.Watch
	base.DryRun = overlay.DryRun

	return base
}

func validate(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrDataDirEmpty
	}

	if cfg.WarehouseDir == "" {
		return ErrWarehouseEmpty
	}

	if cfg.IntervalSeconds <= 0 {
		return ErrIntervalInvalid
	}

	if cfg.Concurrency <= 0 {
		return ErrConcurrencyInvalid
	}

	return nil
}
