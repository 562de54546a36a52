// Package config loads server settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BLOCKNOTES_"

type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Editor   EditorConfig   `yaml:"editor"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Import   ImportConfig   `yaml:"import"`
	MCP      MCPConfig      `yaml:"mcp"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// PublicBaseURL prefixes published document and media URLs.
	PublicBaseURL string `yaml:"public_base_url"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type StorageConfig struct {
	// Driver is one of sqlite, postgres, mysql, mongodb.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Path is the sqlite file; defaults to <data_dir>/blocknotes.db.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type EditorConfig struct {
	// IdleTimeout closes editor sessions that saw no use for this long.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type SnapshotConfig struct {
	Schedule string `yaml:"schedule"`
}

type ImportConfig struct {
	Dir        string `yaml:"dir"`
	OwnerEmail string `yaml:"owner_email"`
}

type MCPConfig struct {
	UserEmail string `yaml:"user_email"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Log:     LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:          ":8080",
			PublicBaseURL: "http://localhost:8080",
			AllowedOrigin: "*",
		},
		Storage:  StorageConfig{Driver: "sqlite"},
		Auth:     AuthConfig{SessionTTL: 30 * 24 * time.Hour},
		Editor:   EditorConfig{IdleTimeout: 30 * time.Minute},
		Snapshot: SnapshotConfig{Schedule: "@every 15m"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blocknotes"
	}
	return filepath.Join(home, ".blocknotes")
}

// Load reads path (when non-empty) over the defaults, then applies
// BLOCKNOTES_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(cfg.DataDir, "blocknotes.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MediaDir is where uploaded files are stored.
func (c Config) MediaDir() string {
	return filepath.Join(c.DataDir, "media")
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DATA_DIR":             &c.DataDir,
		"LOG_LEVEL":            &c.Log.Level,
		"HTTP_ADDR":            &c.HTTP.Addr,
		"HTTP_PUBLIC_BASE_URL": &c.HTTP.PublicBaseURL,
		"HTTP_ALLOWED_ORIGIN":  &c.HTTP.AllowedOrigin,
		"STORAGE_DRIVER":       &c.Storage.Driver,
		"STORAGE_DSN":          &c.Storage.DSN,
		"STORAGE_PATH":         &c.Storage.Path,
		"SNAPSHOT_SCHEDULE":    &c.Snapshot.Schedule,
		"IMPORT_DIR":           &c.Import.Dir,
		"IMPORT_OWNER_EMAIL":   &c.Import.OwnerEmail,
		"MCP_USER_EMAIL":       &c.MCP.UserEmail,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(envPrefix + "LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_PRETTY: %w", envPrefix, err)
		}
		c.Log.Pretty = b
	}
	if v, ok := lookup(envPrefix + "AUTH_SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sAUTH_SESSION_TTL: %w", envPrefix, err)
		}
		c.Auth.SessionTTL = d
	}
	if v, ok := lookup(envPrefix + "EDITOR_IDLE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sEDITOR_IDLE_TIMEOUT: %w", envPrefix, err)
		}
		c.Editor.IdleTimeout = d
	}
	return nil
}

var errMissingDSN = errors.New("dsn is required for this driver")

// Validate checks the settings needed to start the server.
func (c Config) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(c.DataDir) == "" {
		errs["data_dir"] = validation.NewError("config.data_dir_required", "data_dir is required")
	}
	if err := validation.Validate(c.Log.Level, validation.In("trace", "debug", "info", "warn", "error", "disabled")); err != nil {
		errs["log.level"] = err
	}
	if err := validation.Validate(c.HTTP.Addr, validation.Required); err != nil {
		errs["http.addr"] = err
	}
	if !strings.HasPrefix(c.HTTP.PublicBaseURL, "http://") && !strings.HasPrefix(c.HTTP.PublicBaseURL, "https://") {
		errs["http.public_base_url"] = validation.NewError("config.public_base_url_invalid", "public_base_url must be an http(s) URL")
	}
	if err := validation.Validate(c.Storage.Driver, validation.Required, validation.In("sqlite", "postgres", "mysql", "mongodb")); err != nil {
		errs["storage.driver"] = err
	} else if c.Storage.Driver != "sqlite" && c.Storage.DSN == "" {
		errs["storage.dsn"] = errMissingDSN
	}
	if c.Auth.SessionTTL <= 0 {
		errs["auth.session_ttl"] = validation.NewError("config.session_ttl_invalid", "session_ttl must be positive")
	}
	if c.Editor.IdleTimeout <= 0 {
		errs["editor.idle_timeout"] = validation.NewError("config.idle_timeout_invalid", "idle_timeout must be positive")
	}
	if c.Import.Dir != "" && c.Import.OwnerEmail == "" {
		errs["import.owner_email"] = validation.NewError("config.import_owner_required", "owner_email is required when import.dir is set")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
