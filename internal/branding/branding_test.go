package branding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddedDefaults(t *testing.T) {
	assert.Equal(t, "appspace", CLIName())
	assert.Equal(t, "APPSPACE", EnvPrefix())
	assert.Equal(t, "appspace.yaml", ProjectFile())
	assert.Equal(t, "appspace-loader", UserAgent())
	assert.NotEmpty(t, RegistryURL())
	assert.NotEmpty(t, CDNURL())
	assert.NotEmpty(t, GitHubAPIURL())
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "APPSPACE_HOME", EnvVar("home"))
	assert.Equal(t, "APPSPACE_GITHUB_TOKEN", EnvVar("github_token"))
}
