// Package branding provides compile-time identity values for the CLI.
//
// Forks edit branding.yaml in this directory before building; Go's
// //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	GitHubRepo  string `yaml:"github_repo"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:     "create-plugin",
			DisplayName: "Create Plugin",
			Description: "Scaffold a new plugin project from an official template",
			HomeDir:     ".create-plugin",
			EnvPrefix:   "CREATE_PLUGIN",
			GoModule:    "github.com/pluginforge/create-plugin",
			GitHubRepo:  "pluginforge/create-plugin",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "create-plugin").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".create-plugin").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CREATE_PLUGIN").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" string of the CLI itself.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// UserAgent returns the User-Agent header sent with template downloads.
func UserAgent() string { load(); return defaults.CLIName }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("MIRROR") → "CREATE_PLUGIN_MIRROR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
