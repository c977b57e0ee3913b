package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pluginforge/create-plugin/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyMirror             = "mirror"
	KeyTimeout            = "timeout"
	KeyMaxArchiveBytes    = "max_archive_bytes"
	KeyMaxEntries         = "max_entries"
	KeyLicense            = "license"
	KeyMinPlatformVersion = "min_platform_version"
	KeyAuthorName         = "author.name"
	KeyAuthorEmail        = "author.email"
	KeyAuthorURL          = "author.url"
	KeyAuthorHandle       = "author.handle"
)

// Defaults applied when neither the config file nor the environment sets a key.
const (
	DefaultTimeout            = 30 * time.Second
	DefaultMaxArchiveBytes    = 64 << 20
	DefaultMaxEntries         = 10000
	DefaultLicense            = "MIT"
	DefaultMinPlatformVersion = "1.0.0"
)

// Dir returns the path to the config directory (~/.create-plugin/).
// CREATE_PLUGIN_HOME overrides the location.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("HOME")); dir != "" {
		return dir
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
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyTimeout, DefaultTimeout)
	viper.SetDefault(KeyMaxArchiveBytes, DefaultMaxArchiveBytes)
	viper.SetDefault(KeyMaxEntries, DefaultMaxEntries)
	viper.SetDefault(KeyLicense, DefaultLicense)
	viper.SetDefault(KeyMinPlatformVersion, DefaultMinPlatformVersion)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Mirror returns the configured template mirror base URL, if any.
func Mirror() string {
	return strings.TrimSpace(viper.GetString(KeyMirror))
}

// Timeout returns the transport timeout for template downloads.
func Timeout() time.Duration {
	d := viper.GetDuration(KeyTimeout)
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// MaxArchiveBytes returns the largest archive body or total extracted size accepted.
func MaxArchiveBytes() int64 {
	n := viper.GetInt64(KeyMaxArchiveBytes)
	if n <= 0 {
		return DefaultMaxArchiveBytes
	}
	return n
}

// MaxEntries returns the largest number of archive entries accepted.
func MaxEntries() int {
	n := viper.GetInt(KeyMaxEntries)
	if n <= 0 {
		return DefaultMaxEntries
	}
	return n
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
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
