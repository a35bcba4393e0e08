// Package config provides configuration management for repodash.
// It loads and validates the YAML configuration file, supplies defaults for
// every section and resolves the API token from the environment.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/repodash/pkg/auth"
	"github.com/glorpus-work/repodash/pkg/category"
	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Settings Settings       `yaml:"settings"`

	// Extra categories merged into the built-in registry at startup.
	Categories []category.Category `yaml:"categories,omitempty" validate:"dive"`
}

// APIConfig configures access to the GitHub REST API.
type APIConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Token   string `yaml:"token,omitempty"`
	// Username switches to basic authentication with the token as password.
	Username    string            `yaml:"username,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	HTTPTimeout time.Duration     `yaml:"http_timeout" validate:"gte=0"`
}

// SearchConfig controls remote searches.
type SearchConfig struct {
	PerPage             int `yaml:"per_page" validate:"gte=1,lte=100"`
	TrendingDays        int `yaml:"trending_days" validate:"gte=1"`
	TrendingConcurrency int `yaml:"trending_concurrency" validate:"gte=1"`
}

// CacheConfig controls the in-memory response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

// SnapshotConfig points at the pre-generated data file.
type SnapshotConfig struct {
	// Enabled makes the snapshot the first choice when it is fresh.
	Enabled    bool   `yaml:"enabled"`
	Source     string `yaml:"source"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// Settings represents general application settings.
type Settings struct {
	LogLevel     string `yaml:"log_level"`
	StateDir     string `yaml:"state_dir,omitempty"`
	OutputFormat string `yaml:"output_format"` // text, json
}

// Default configuration values.
const (
	DefaultBaseURL             = "https://api.github.com"
	DefaultHTTPTimeout         = 30 * time.Second
	DefaultPerPage             = 30
	DefaultTrendingDays        = 7
	DefaultTrendingConcurrency = 1
	DefaultCacheTTL            = 30 * time.Minute
	DefaultSnapshotSource      = "data.json"
	DefaultSnapshotMaxAgeDays  = 7

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// TokenEnvVars lists the environment variables consulted for the API token, in order.
var TokenEnvVars = []string{"REPODASH_TOKEN", "GITHUB_TOKEN", "DASHBOARD_TOKEN"}

var validate = validator.New()

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			HTTPTimeout: DefaultHTTPTimeout,
		},
		Search: SearchConfig{
			PerPage:             DefaultPerPage,
			TrendingDays:        DefaultTrendingDays,
			TrendingConcurrency: DefaultTrendingConcurrency,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     DefaultCacheTTL,
		},
		Snapshot: SnapshotConfig{
			Enabled:    true,
			Source:     DefaultSnapshotSource,
			MaxAgeDays: DefaultSnapshotMaxAgeDays,
		},
		Settings: Settings{
			LogLevel:     "info",
			OutputFormat: "text",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	// Sections absent from the document keep their defaults, including booleans.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return config, nil
}

// SaveConfig writes the configuration atomically. The file may hold a token,
// so it is not world readable.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath, fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	err = fsutil.WriteFileAtomic(absPath, fsutil.FileModeSecure, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(YAMLIndent)
		if err := encoder.Encode(c); err != nil {
			return errors.Wrap(errors.ErrConfigEncode, err.Error())
		}
		return encoder.Close()
	})
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := validateCategories(c.Categories); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateCategories(categories []category.Category) error {
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c.Name] {
			return errors.ErrDuplicateCategoryWithName(c.Name)
		}
		seen[c.Name] = true
	}
	_, err := category.New(categories)
	return err
}

func validateSettings(s Settings) error {
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return fsutil.ConfigFile()
}

// Registry builds the category registry from the defaults and the configured extras.
func (c *Config) Registry() (*category.Registry, error) {
	return category.New(c.Categories)
}

// ResolveToken returns the configured token, falling back to the first
// non-empty token environment variable.
func (c *Config) ResolveToken() string {
	if c.API.Token != "" {
		return c.API.Token
	}
	for _, name := range TokenEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// Authenticator returns the credentials for API requests, or nil.
func (c *Config) Authenticator() auth.Authenticator {
	return auth.New(c.API.Username, c.ResolveToken(), c.API.Headers)
}

// SnapshotMaxAge returns the freshness window of the snapshot.
func (c *Config) SnapshotMaxAge() time.Duration {
	return time.Duration(c.Snapshot.MaxAgeDays) * 24 * time.Hour
}

// GetStateDir returns the directory holding user preferences.
func (c *Config) GetStateDir() string {
	return c.Settings.StateDir
}

// applyDefaults fills in zero values that have no meaning with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.HTTPTimeout == 0 {
		c.API.HTTPTimeout = defaults.API.HTTPTimeout
	}
	if c.Search.PerPage == 0 {
		c.Search.PerPage = defaults.Search.PerPage
	}
	if c.Search.TrendingDays == 0 {
		c.Search.TrendingDays = defaults.Search.TrendingDays
	}
	if c.Search.TrendingConcurrency == 0 {
		c.Search.TrendingConcurrency = defaults.Search.TrendingConcurrency
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}
	if c.Snapshot.Source == "" {
		c.Snapshot.Source = defaults.Snapshot.Source
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
