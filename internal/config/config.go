// Package config provides configuration management for docsync.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/docsync/docsync/internal/model"
	"github.com/docsync/docsync/internal/util"
)

// Config represents the complete docsync configuration.
type Config struct {
	// Notion configures access to the Notion API
	Notion NotionConfig `yaml:"notion"`

	// Sync configures default synchronization behavior
	Sync SyncConfig `yaml:"sync"`

	// Watch configures watch-mode timings
	Watch WatchConfig `yaml:"watch"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`

	// Backup configures backup behavior
	Backup BackupConfig `yaml:"backup"`
}

// NotionConfig holds Notion API settings.
type NotionConfig struct {
	// Token is the integration token. Prefer the environment variable;
	// tokens in config files end up in dotfile repos.
	Token string `yaml:"token,omitempty"`

	// ParentPageID is the default parent page for pages created by init.
	ParentPageID string `yaml:"parent_page_id,omitempty"`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// DefaultDirection is the sync direction for new pairs
	DefaultDirection string `yaml:"default_direction"`
	// DefaultResolution is the conflict resolution strategy for new pairs
	DefaultResolution string `yaml:"default_resolution"`
	// AutoBackup backs up the local file before a pull overwrites it
	AutoBackup bool `yaml:"auto_backup"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	// Debounce is the quiet period after a local edit before syncing
	Debounce time.Duration `yaml:"debounce"`
	// PollInterval is how often remote documents are checked (0 disables)
	PollInterval time.Duration `yaml:"poll_interval"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the default output format (table, json)
	Format string `yaml:"format"`
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Enabled enables automatic backups
	Enabled bool `yaml:"enabled"`
	// MaxBackups is the maximum number of backups to keep per file
	MaxBackups int `yaml:"max_backups"`
	// RetentionDays is how long to keep backups
	RetentionDays int `yaml:"retention_days"`
}

// TokenEnvVar is the environment variable holding the Notion token.
const TokenEnvVar = "NOTION_TOKEN"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			DefaultDirection:  string(model.Bidirectional),
			DefaultResolution: string(model.ResolveManual),
			AutoBackup:        true,
		},
		Watch: WatchConfig{
			Debounce:     500 * time.Millisecond,
			PollInterval: 30 * time.Second,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
		},
		Backup: BackupConfig{
			Enabled:       true,
			MaxBackups:    10,
			RetentionDays: 30,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the user-level config file.
func FilePath() string {
	return filepath.Join(util.DocsyncConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	return LoadFromPath(FilePath())
}

// LoadFromPath loads configuration from a specific path over defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern DOCSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv(TokenEnvVar); v != "" {
		c.Notion.Token = v
	}
	if v := os.Getenv("DOCSYNC_NOTION_PARENT_PAGE"); v != "" {
		c.Notion.ParentPageID = v
	}

	if v := os.Getenv("DOCSYNC_SYNC_DIRECTION"); v != "" {
		c.Sync.DefaultDirection = v
	}
	if v := os.Getenv("DOCSYNC_SYNC_RESOLUTION"); v != "" {
		c.Sync.DefaultResolution = v
	}
	if v := os.Getenv("DOCSYNC_SYNC_AUTO_BACKUP"); v != "" {
		c.Sync.AutoBackup = parseBool(v)
	}

	if v := os.Getenv("DOCSYNC_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Watch.Debounce = d
		}
	}
	if v := os.Getenv("DOCSYNC_WATCH_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Watch.PollInterval = d
		}
	}

	if v := os.Getenv("DOCSYNC_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("DOCSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("DOCSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv("DOCSYNC_BACKUP_ENABLED"); v != "" {
		c.Backup.Enabled = parseBool(v)
	}
	if v := os.Getenv("DOCSYNC_BACKUP_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Backup.MaxBackups = n
		}
	}
}

// GetDirection returns the validated default sync direction.
func (c *Config) GetDirection() model.SyncDirection {
	direction := model.SyncDirection(c.Sync.DefaultDirection)
	if direction.IsValid() {
		return direction
	}
	return model.Bidirectional
}

// GetResolution returns the validated default conflict resolution.
func (c *Config) GetResolution() model.ConflictResolution {
	resolution := model.ConflictResolution(c.Sync.DefaultResolution)
	if resolution.IsValid() {
		return resolution
	}
	return model.ResolveManual
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
