// Package config loads the rmkgen generator configuration.
//
// Configuration is layered, lowest precedence first: built-in defaults, the
// user config, the project config (.rmkgen.yaml in the working directory),
// then RMKGEN_* environment variables. Command-line flags are applied by the
// caller on top of the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/materialize"
	"github.com/Aman-CERP/rmkgen/internal/reconcile"
	"github.com/Aman-CERP/rmkgen/internal/template"
)

// ProjectFiles are the project config names, in lookup order.
var ProjectFiles = []string{".rmkgen.yaml", ".rmkgen.yml"}

// Config is the complete generator configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Template  TemplateConfig  `yaml:"template" json:"template"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Reconcile ReconcileConfig `yaml:"reconcile" json:"reconcile"`
	Resolve   ResolveConfig   `yaml:"resolve" json:"resolve"`
	Download  DownloadConfig  `yaml:"download" json:"download"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// TemplateConfig selects the project template.
type TemplateConfig struct {
	// Source is "embedded", a directory, a .zip path or an http(s) URL.
	Source string `yaml:"source" json:"source"`
	// CacheDir keeps downloaded archives. Empty disables caching.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// OutputConfig configures the project directory.
type OutputConfig struct {
	// Policy is refuse, replace or preserve.
	Policy string `yaml:"policy" json:"policy"`
}

// ReconcileConfig configures reconciliation.
type ReconcileConfig struct {
	// SplitPolicy is offsets, rows or columns.
	SplitPolicy string `yaml:"split_policy" json:"split_policy"`
}

// ResolveConfig configures keycode resolution.
type ResolveConfig struct {
	// Workers bounds concurrent layer resolution. 0 uses every CPU.
	Workers int `yaml:"workers" json:"workers"`
}

// DownloadConfig configures template downloads.
type DownloadConfig struct {
	MaxRetries int    `yaml:"max_retries" json:"max_retries"`
	Timeout    string `yaml:"timeout" json:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Template: TemplateConfig{
			Source:   template.DefaultURL,
			CacheDir: defaultCacheDir(),
		},
		Output:    OutputConfig{Policy: string(materialize.PolicyRefuse)},
		Reconcile: ReconcileConfig{SplitPolicy: string(reconcile.SplitByOffsets)},
		Resolve:   ResolveConfig{Workers: 0},
		Download:  DownloadConfig{MaxRetries: 3, Timeout: "60s"},
		Logging:   LoggingConfig{Level: "warn"},
	}
}

// defaultCacheDir returns ~/.rmkgen/cache, or "" without a home directory.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rmkgen", "cache")
}

// GetUserConfigPath returns the path to the user configuration file:
// $XDG_CONFIG_HOME/rmkgen/config.yaml, or ~/.config/rmkgen/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rmkgen", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "rmkgen", "config.yaml")
	}
	return filepath.Join(home, ".config", "rmkgen", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config in dir, or "" if none exists.
func ProjectConfigPath(dir string) string {
	for _, name := range ProjectFiles {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

// Load loads configuration for the working directory dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if p := GetUserConfigPath(); fileExists(p) {
		if err := cfg.loadYAML(p); err != nil {
			return nil, err
		}
	}
	if p := ProjectConfigPath(dir); p != "" {
		if err := cfg.loadYAML(p); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a single config file over the defaults, without other
// layers or validation.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML decodes path over c. Keys absent from the file keep their
// current value, so explicit zeros in the file still apply.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err).
			WithDetail("file", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("file", path)
	}
	return nil
}

// applyEnvOverrides applies RMKGEN_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("RMKGEN_TEMPLATE"); v != "" {
		c.Template.Source = v
	}
	if v, ok := os.LookupEnv("RMKGEN_CACHE_DIR"); ok {
		c.Template.CacheDir = v
	}
	if v := os.Getenv("RMKGEN_POLICY"); v != "" {
		c.Output.Policy = v
	}
	if v := os.Getenv("RMKGEN_SPLIT_POLICY"); v != "" {
		c.Reconcile.SplitPolicy = v
	}
	if v := os.Getenv("RMKGEN_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.ConfigError(fmt.Sprintf("RMKGEN_WORKERS must be an integer, got %q", v), err).
				WithDetail("field", "resolve.workers")
		}
		c.Resolve.Workers = n
	}
	if v := os.Getenv("RMKGEN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate rejects values the generator cannot use.
func (c *Config) Validate() error {
	var r errors.Report
	invalid := func(field, format string, args ...any) {
		r.Add(errors.ConfigError(fmt.Sprintf(format, args...), nil).WithDetail("field", field))
	}

	if c.Version > 1 {
		invalid("version", "unsupported config version %d", c.Version)
	}
	if _, err := materialize.ParsePolicy(c.Output.Policy); err != nil {
		r.Merge(err)
	}
	if _, err := reconcile.ParseSplitPolicy(c.Reconcile.SplitPolicy); err != nil {
		r.Merge(err)
	}
	if c.Resolve.Workers < 0 {
		invalid("resolve.workers", "resolve.workers must be non-negative, got %d", c.Resolve.Workers)
	}
	if c.Download.MaxRetries < 0 {
		invalid("download.max_retries", "download.max_retries must be non-negative, got %d", c.Download.MaxRetries)
	}
	if d, err := time.ParseDuration(c.Download.Timeout); err != nil || d <= 0 {
		invalid("download.timeout", "download.timeout must be a positive duration, got %q", c.Download.Timeout)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		invalid("logging.level", "logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level)
	}
	return r.Err()
}

// DownloadTimeout returns the parsed download timeout, or 0 if invalid.
func (c *Config) DownloadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Download.Timeout)
	return d
}

// RetryConfig returns the download retry policy.
func (c *Config) RetryConfig() errors.RetryConfig {
	rc := errors.DefaultRetryConfig()
	rc.MaxRetries = c.Download.MaxRetries
	return rc
}

// TemplateOptions returns the options for template.NewSource.
func (c *Config) TemplateOptions() []template.Option {
	opts := []template.Option{
		template.WithRetry(c.RetryConfig()),
		template.WithTimeout(c.DownloadTimeout()),
	}
	if c.Template.CacheDir != "" {
		opts = append(opts, template.WithCacheDir(c.Template.CacheDir))
	}
	return opts
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
