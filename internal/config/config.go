package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "tesoro.yaml"

// Config represents the top-level tesoro.yaml configuration.
type Config struct {
	Owner    string         `yaml:"owner" env:"TESORO_OWNER"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Import   ImportConfig   `yaml:"import"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Log      LogConfig      `yaml:"log"`
	// SecretsFile is an optional ejson file holding the database password.
	SecretsFile string `yaml:"secrets_file,omitempty" env:"TESORO_SECRETS_FILE"`
}

// DatabaseConfig selects and locates the database.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"TESORO_DB_DRIVER"` // "postgres" or "sqlite"
	DSN      string `yaml:"dsn,omitempty" env:"TESORO_DB_DSN"`
	Addr     string `yaml:"addr,omitempty" env:"TESORO_DB_ADDR"`
	User     string `yaml:"user,omitempty" env:"TESORO_DB_USER"`
	Name     string `yaml:"name,omitempty" env:"TESORO_DB_NAME"`
	Password string `yaml:"-"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"TESORO_SERVER_ADDR"`
}

// ImportConfig controls statement import and reconciliation.
type ImportConfig struct {
	TransferWindowDays int           `yaml:"transfer_window_days" env:"TESORO_TRANSFER_WINDOW_DAYS"`
	OrphanWindowDays   int           `yaml:"orphan_window_days" env:"TESORO_ORPHAN_WINDOW_DAYS"`
	Schedule           string        `yaml:"schedule" env:"TESORO_IMPORT_SCHEDULE"` // cron expression for watch
	Inbox              []InboxSource `yaml:"inbox,omitempty"`
}

// InboxSource maps a directory of statement files to an account.
type InboxSource struct {
	Dir        string `yaml:"dir"`
	AccountID  string `yaml:"account_id"`
	TemplateID string `yaml:"template_id,omitempty"` // empty = account's linked template
}

// ArchiveConfig controls where imported statement files are kept.
type ArchiveConfig struct {
	Dir       string `yaml:"dir,omitempty" env:"TESORO_ARCHIVE_DIR"`
	GCSBucket string `yaml:"gcs_bucket,omitempty" env:"TESORO_ARCHIVE_GCS_BUCKET"`
	GCSPrefix string `yaml:"gcs_prefix,omitempty" env:"TESORO_ARCHIVE_GCS_PREFIX"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" env:"TESORO_LOG_LEVEL"`
}

// Load reads a tesoro.yaml file from disk, applies TESORO_* environment
// overrides and resolves secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var override Config
	if err := env.Parse(&override); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging environment: %w", err)
	}

	secrets, err := readSecrets(cfg.SecretsFile)
	if err != nil {
		return nil, err
	}
	cfg.Database.Password = secrets.DBPassword
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new install.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:tesoro.db?_foreign_keys=on",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Import: ImportConfig{
			TransferWindowDays: 5,
			OrphanWindowDays:   5,
			Schedule:           "@every 5m",
		},
		Archive: ArchiveConfig{
			Dir: "archive",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
