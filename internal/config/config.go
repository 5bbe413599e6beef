package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/fossabot/person-db-skeleton/internal/tracker"
)

// Default values for configuration fields.
const (
	DefaultPath             = "persondb.yml"
	DefaultMigrationsDir    = "" // bundled skeleton
	DefaultLockWait         = 30 * time.Second
	DefaultLockTimeout      = 5 * time.Second
	DefaultStatementTimeout = 30 * time.Second
	DefaultFormat           = FormatText
)

// Output formats accepted by the status command.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Environment variables consulted by MergeEnv.
const (
	EnvDatabaseURL      = "PERSONDB_DATABASE_URL"
	EnvMigrationsDir    = "PERSONDB_MIGRATIONS_DIR"
	EnvHistoryTable     = "PERSONDB_HISTORY_TABLE"
	EnvLockWait         = "PERSONDB_LOCK_WAIT"
	EnvLockTimeout      = "PERSONDB_LOCK_TIMEOUT"
	EnvStatementTimeout = "PERSONDB_STATEMENT_TIMEOUT"
	EnvFormat           = "PERSONDB_FORMAT"
)

var (
	// ErrUnknownFileType is returned for config files that are neither YAML nor TOML.
	ErrUnknownFileType = errors.New("unknown config file type")
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the application configuration loaded from file, environment, and flags.
type Config struct {
	DatabaseURL      string
	MigrationsDir    string
	HistoryTable     string
	LockWait         time.Duration
	LockTimeout      time.Duration
	StatementTimeout time.Duration
	SessionProfiles  map[string][]string
	Format           string
}

// fileConfig is the raw file representation with string durations.
//
//nolint:tagliatelle
type fileConfig struct {
	DatabaseURL      string              `yaml:"database_url"      toml:"database_url"`
	MigrationsDir    string              `yaml:"migrations_dir"    toml:"migrations_dir"`
	HistoryTable     string              `yaml:"history_table"     toml:"history_table"`
	LockWait         string              `yaml:"lock_wait"         toml:"lock_wait"`
	LockTimeout      string              `yaml:"lock_timeout"      toml:"lock_timeout"`
	StatementTimeout string              `yaml:"statement_timeout" toml:"statement_timeout"`
	SessionProfiles  map[string][]string `yaml:"session_profiles"  toml:"session_profiles"`
	Format           string              `yaml:"format"            toml:"format"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		MigrationsDir:    DefaultMigrationsDir,
		HistoryTable:     tracker.DefaultTable,
		LockWait:         DefaultLockWait,
		LockTimeout:      DefaultLockTimeout,
		StatementTimeout: DefaultStatementTimeout,
		Format:           DefaultFormat,
	}
}

// Load reads a YAML (.yml, .yaml) or TOML (.toml) configuration file and
// returns a Config. If allowMissing is true and the file does not exist,
// defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw fileConfig

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("config file %s: %w %q", path, ErrUnknownFileType, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromFile(&raw)
}

// fromFile converts the raw file representation to a Config with defaults applied.
func fromFile(raw *fileConfig) (*Config, error) {
	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	if raw.HistoryTable != "" {
		cfg.HistoryTable = raw.HistoryTable
	}

	durations := []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"lock_wait", raw.LockWait, &cfg.LockWait},
		{"lock_timeout", raw.LockTimeout, &cfg.LockTimeout},
		{"statement_timeout", raw.StatementTimeout, &cfg.StatementTimeout},
	}

	for _, d := range durations {
		if d.val == "" {
			continue
		}

		v, err := time.ParseDuration(d.val)
		if err != nil {
			return nil, fmt.Errorf("parsing %s %q: %w", d.key, d.val, err)
		}

		*d.dst = v
	}

	if len(raw.SessionProfiles) > 0 {
		cfg.SessionProfiles = raw.SessionProfiles
	}

	if raw.Format != "" {
		cfg.Format = raw.Format
	}

	return cfg, nil
}

// MergeEnv overrides config fields from PERSONDB_* environment variables.
// Unparseable durations leave the current value in place.
func MergeEnv(cfg *Config) {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv(EnvMigrationsDir); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv(EnvHistoryTable); v != "" {
		cfg.HistoryTable = v
	}

	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Format = v
	}

	for key, dst := range map[string]*time.Duration{
		EnvLockWait:         &cfg.LockWait,
		EnvLockTimeout:      &cfg.LockTimeout,
		EnvStatementTimeout: &cfg.StatementTimeout,
	} {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
}

// Validate checks the merged configuration before a command uses it.
func (c *Config) Validate() error {
	if !tracker.ValidTableName(c.HistoryTable) {
		return fmt.Errorf("%w: history_table %q is not a plain SQL identifier", ErrInvalidConfig, c.HistoryTable)
	}

	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("%w: format must be %q or %q, got %q", ErrInvalidConfig, FormatText, FormatJSON, c.Format)
	}

	for name, d := range map[string]time.Duration{
		"lock_wait":         c.LockWait,
		"lock_timeout":      c.LockTimeout,
		"statement_timeout": c.StatementTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}

	return nil
}
