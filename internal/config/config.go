package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/spf13/viper"

	"github.com/kispace-io/appspace/internal/branding"
	"github.com/kispace-io/appspace/internal/tracing"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognised keys.
const (
	KeyRegistryURL    = "registry_url"
	KeyCDNURL         = "cdn_url"
	KeyGitHubAPIURL   = "github_api_url"
	KeyGitHubToken    = "github_token"
	KeyCacheURL       = "cache_url"
	KeyWorkspaceURL   = "workspace_url"
	KeyLogLevel       = "log_level"
	KeyHTTPTimeout    = "http_timeout"
	KeyTracingEnabled = "tracing.enabled"
	KeyTracingExport  = "tracing.exporter"
	KeyTracingFile    = "tracing.file_path"
	KeyTracingOTLP    = "tracing.otlp_endpoint"
)

var keys = []string{
	KeyRegistryURL, KeyCDNURL, KeyGitHubAPIURL, KeyGitHubToken,
	KeyCacheURL, KeyWorkspaceURL, KeyLogLevel, KeyHTTPTimeout,
	KeyTracingEnabled, KeyTracingExport, KeyTracingFile, KeyTracingOTLP,
}

// Settings is the resolved configuration.
type Settings struct {
	RegistryURL  string         `mapstructure:"registry_url"`
	CDNURL       string         `mapstructure:"cdn_url"`
	GitHubAPIURL string         `mapstructure:"github_api_url"`
	GitHubToken  string         `mapstructure:"github_token"`
	CacheURL     string         `mapstructure:"cache_url"`
	WorkspaceURL string         `mapstructure:"workspace_url"`
	LogLevel     string         `mapstructure:"log_level"`
	HTTPTimeout  time.Duration  `mapstructure:"http_timeout"`
	Tracing      tracing.Config `mapstructure:"tracing"`
}

// Defaults returns the settings used for every key left unset.
func Defaults() Settings {
	return Settings{
		RegistryURL:  branding.RegistryURL(),
		CDNURL:       branding.CDNURL(),
		GitHubAPIURL: branding.GitHubAPIURL(),
		CacheURL:     "sqlite://" + filepath.Join(Dir(), "cache.db"),
		LogLevel:     "warn",
		HTTPTimeout:  30 * time.Second,
		Tracing:      tracing.DefaultConfig(),
	}
}

// Dir returns the config directory: $APPSPACE_HOME when set, otherwise
// ~/.appspace.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// Nested keys map to env vars with underscores: tracing.enabled is read from
// APPSPACE_TRACING_ENABLED.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, k := range keys {
		// Unmarshal only sees env values for bound keys.
		_ = viper.BindEnv(k)
	}

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current decodes the loaded configuration and fills unset fields from
// Defaults.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := mergo.Merge(&s, Defaults()); err != nil {
		return Settings{}, fmt.Errorf("applying config defaults: %w", err)
	}
	return s, nil
}

// Keys returns the recognised configuration keys.
func Keys() []string {
	return slices.Clone(keys)
}

// IsKey reports whether key is recognised.
func IsKey(key string) bool {
	return slices.Contains(keys, key)
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(keys, ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
