// Package config provides configuration types and defaults for hoard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/hoard/internal/flags"
	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/paths"
	"github.com/zjrosen/hoard/internal/tracing"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all configuration options for hoard.
type Config struct {
	Store   StoreConfig     `mapstructure:"store"`
	Schema  SchemaConfig    `mapstructure:"schema"`
	Catalog CatalogConfig   `mapstructure:"catalog"`
	Cache   CacheConfig     `mapstructure:"cache"`
	Watch   WatchConfig     `mapstructure:"watch"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// StoreConfig selects where the document lives.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "file" (default) or "sqlite"
	Path    string `mapstructure:"path"`
}

// SchemaConfig gates which documents may be loaded.
type SchemaConfig struct {
	// Expected is the version this reader understands. Empty means the
	// built-in current version.
	Expected string `mapstructure:"expected"`

	// AllowIncompatible loads documents with a different major version
	// after logging a warning.
	AllowIncompatible bool `mapstructure:"allow_incompatible"`
}

// CatalogConfig holds query defaults.
type CatalogConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// WatchConfig controls reload-on-change.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ExpectedVersion parses Schema.Expected, defaulting to the current version.
func (c Config) ExpectedVersion() (inventory.SchemaVersion, error) {
	if c.Schema.Expected == "" {
		return inventory.CurrentSchemaVersion, nil
	}
	return inventory.ParseSchemaVersion(c.Schema.Expected)
}

// DocumentPath returns the configured store path resolved to a file.
func (c Config) DocumentPath() string {
	return paths.ResolveDocumentPath(c.Store.Path)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = paths.DefaultTracesPath()

	return Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    paths.DefaultDocumentPath(),
		},
		Schema: SchemaConfig{
			Expected: inventory.CurrentSchemaVersion.String(),
		},
		Catalog: CatalogConfig{PageSize: 50},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Watch:   WatchConfig{Debounce: 500 * time.Millisecond},
		Tracing: tc,
		Flags:   flags.Defaults(),
	}
}

// SetDefaults registers Defaults() on v so unset keys fall back to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("schema.expected", d.Schema.Expected)
	v.SetDefault("schema.allow_incompatible", d.Schema.AllowIncompatible)
	v.SetDefault("catalog.page_size", d.Catalog.PageSize)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	for name, on := range d.Flags {
		v.SetDefault("flags."+name, on)
	}
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Store.Backend)
	}
	if _, err := c.ExpectedVersion(); err != nil {
		return fmt.Errorf("schema.expected: %w", err)
	}
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.page_size must be at least 1, got %d", c.Catalog.PageSize)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval must not be negative, got %s", c.Cache.CleanupInterval)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTracing checks tracing configuration. Empty values use defaults.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	switch tc.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}

	if !tc.Enabled {
		return nil
	}
	if tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	}
	if tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as YAML with comments.
func DefaultConfigTemplate() string {
	return `# Hoard Configuration

# Where the inventory document lives
store:
  backend: file      # "file" (yaml, json or toml by extension) or "sqlite"
  # path: ~/.local/share/hoard/inventory.yaml

# Schema gating on load
schema:
  expected: ` + inventory.CurrentSchemaVersion.String() + `
  allow_incompatible: false   # load other major versions with a warning

catalog:
  page_size: 50

# Result cache for list and relationship evaluation
cache:
  enabled: true
  ttl: 5m
  cleanup_interval: 10m

# Reload when the document changes on disk (hoard watch)
watch:
  debounce: 500ms

# Tracing
# tracing:
#   enabled: false                 # default: false
#   exporter: file                 # none, file, stdout, otlp (default: file)
#   file_path: ~/.config/hoard/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Feature flags
flags:
  auto-ulid: true      # give new assets a ULID identifier
  result-cache: true
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
