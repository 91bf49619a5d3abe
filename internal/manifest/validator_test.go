package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	res, err := Validate([]byte(`{
		"name": "hello",
		"publisher": "acme",
		"version": "1.0.0",
		"browser": "./dist/web.js",
		"extensionKind": ["ui", "workspace"],
		"contributes": {"commands": [{"command": "hello.say", "title": "Say"}]}
	}`))
	require.NoError(t, err)
	assert.True(t, res.Valid, "issues: %v", res.Issues)
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		keyword string
	}{
		{"missing version", `{"name": "hello"}`, "required"},
		{"bad name", `{"name": "Hello World", "version": "1.0.0"}`, "pattern"},
		{"bad kind", `{"name": "a", "version": "1.0.0", "extensionKind": ["desktop"]}`, "enum"},
		{"command without title", `{"name": "a", "version": "1.0.0", "contributes": {"commands": [{"command": "x"}]}}`, "required"},
		{"not semver", `{"name": "a", "version": "latest"}`, "semver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate([]byte(tt.data))
			require.NoError(t, err)
			assert.False(t, res.Valid)

			var keywords []string
			for _, issue := range res.Issues {
				keywords = append(keywords, issue.Keyword)
			}
			assert.Contains(t, keywords, tt.keyword)
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	_, err := Validate([]byte(`{"name":`))
	require.ErrorIs(t, err, ErrManifestParse)
}

func TestLint(t *testing.T) {
	assert.Empty(t, Lint([]byte(`{"name": "ok", "version": "0.1.0"}`)))

	lines := Lint([]byte(`{"name": "ok"}`))
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "manifest")

	lines = Lint([]byte(`not json`))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "not validated")
}
