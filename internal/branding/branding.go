// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building; Go's
// //go:embed bakes it into the binary. The service endpoints listed here are
// only defaults: every one of them can be overridden through config.
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
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	RegistryURL  string `yaml:"registry_url"`
	CDNURL       string `yaml:"cdn_url"`
	GitHubAPIURL string `yaml:"github_api_url"`
	ProjectFile  string `yaml:"project_file"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:      "appspace",
			DisplayName:  "AppSpace",
			Description:  "Extension loader for the AppSpace workbench",
			HomeDir:      ".appspace",
			EnvPrefix:    "APPSPACE",
			GoModule:     "github.com/kispace-io/appspace",
			RegistryURL:  "https://open-vsx.org/api",
			CDNURL:       "https://esm.sh",
			GitHubAPIURL: "https://api.github.com",
			ProjectFile:  "appspace.yaml",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "appspace").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".appspace").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "APPSPACE").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// RegistryURL returns the default Open VSX API base.
func RegistryURL() string { load(); return defaults.RegistryURL }

// CDNURL returns the default CDN transform endpoint base.
func CDNURL() string { load(); return defaults.CDNURL }

// GitHubAPIURL returns the default GitHub REST API base.
func GitHubAPIURL() string { load(); return defaults.GitHubAPIURL }

// ProjectFile returns the file name of the per-project extension list.
func ProjectFile() string { load(); return defaults.ProjectFile }

// UserAgent returns the User-Agent sent with every outbound request.
func UserAgent() string { load(); return defaults.CLIName + "-loader" }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "APPSPACE_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
