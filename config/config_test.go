package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromBytesSampleConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testutil.SampleConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	require.Len(t, cfg.Profiles, 5)

	lpar1 := cfg.Profile("lpar1")
	require.NotNil(t, lpar1)
	assert.Equal(t, "zosmf", lpar1.Type)
	assert.True(t, lpar1.Default)
	assert.Equal(t, "lpar1-ssh", lpar1.Links["ssh"])
	assert.Equal(t, "lpar1.example.com", lpar1.Properties["host"])

	require.NotNil(t, cfg.Views)
	assert.Equal(t, []string{"zosmf", "ssh"}, cfg.Views.Filesystem.ProfileTypes)

	assert.Nil(t, cfg.Profile("missing"))
}

func TestSetDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("profiles: []\n"))
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	require.NotNil(t, cfg.Watch)
	require.NotNil(t, cfg.Watch.Enabled)
	assert.True(t, *cfg.Watch.Enabled)
	assert.Equal(t, 100, cfg.Watch.DebounceMs)
}

// TestExtensions verifies that custom top-level sections are captured
func TestExtensions(t *testing.T) {
	yamlContent := []byte(`
version: "1.0"
logging:
  level: debug
  report_caller: true
explorer:
  refresh_on_start: true
`)

	cfg, err := LoadFromBytes(yamlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg.Extensions)

	type loggingSection struct {
		Level        string `yaml:"level"`
		ReportCaller bool   `yaml:"report_caller"`
	}
	var logCfg loggingSection
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
	assert.True(t, logCfg.ReportCaller)

	// Missing extensions leave the target untouched.
	var missing loggingSection
	require.NoError(t, cfg.UnmarshalExtension("nope", &missing))
	assert.Empty(t, missing.Level)

	_, ok := cfg.Extensions["profiles"]
	assert.False(t, ok, "known keys must not be captured as extensions")
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("LPAR_HOST", "env.example.com")

	cfg, err := LoadFromBytes([]byte(`
profiles:
  - name: lpar1
    type: zosmf
    properties:
      host: ${LPAR_HOST}
      user: ${LPAR_USER:-fallback}
`))
	require.NoError(t, err)

	props := cfg.Profile("lpar1").Properties
	assert.Equal(t, "env.example.com", props["host"])
	assert.Equal(t, "fallback", props["user"])
}

func TestSchemaValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "profile without type",
			yaml: "profiles:\n  - name: lpar1\n",
		},
		{
			name: "profiles is not a list",
			yaml: "profiles: lpar1\n",
		},
		{
			name: "link target is not a string",
			yaml: "profiles:\n  - name: lpar1\n    type: zosmf\n    links:\n      ssh: [a, b]\n",
		},
		{
			name: "negative debounce",
			yaml: "watch:\n  debounce_ms: -5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid), "got %v", err)
		})
	}
}

func TestSemanticValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{
			name:    "duplicate names",
			yaml:    "profiles:\n  - {name: a, type: zosmf}\n  - {name: a, type: ssh}\n",
			message: "duplicate profile name 'a'",
		},
		{
			name:    "dangling link",
			yaml:    "profiles:\n  - {name: a, type: zosmf, links: {ssh: b}}\n",
			message: "unknown profile 'b'",
		},
		{
			name:    "self link",
			yaml:    "profiles:\n  - {name: a, type: zosmf, links: {ssh: a}}\n",
			message: "links to itself",
		},
		{
			name:    "two defaults for one type",
			yaml:    "profiles:\n  - {name: a, type: zosmf, default: true}\n  - {name: b, type: zosmf, default: true}\n",
			message: "both default",
		},
		{
			name:    "invalid name",
			yaml:    "profiles:\n  - {name: '-bad', type: zosmf}\n",
			message: "invalid profile name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadTOML(t *testing.T) {
	testutil.IsolateHome(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "extender.toml", `
version = "1.0"

[[profiles]]
name = "lpar1"
type = "zosmf"
default = true

[profiles.properties]
host = "lpar1.example.com"
port = 443

[profiles.links]
ssh = "lpar1-ssh"

[[profiles]]
name = "lpar1-ssh"
type = "ssh"

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 2)
	assert.Equal(t, "lpar1-ssh", cfg.Profile("lpar1").Links["ssh"])
	assert.EqualValues(t, 443, cfg.Profile("lpar1").Properties["port"])
	assert.Equal(t, []string{path}, cfg.Sources())

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "warn", logCfg.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "extender.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestFindConfigFile(t *testing.T) {
	testutil.IsolateHome(t)
	root := t.TempDir()
	testutil.WriteFile(t, root, "extender.yml", "version: \"1.0\"\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "extender.yml"), found)

	_, err = FindConfigFile(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestLoadFromMergesLayers(t *testing.T) {
	home := testutil.IsolateHome(t)
	testutil.WriteFile(t, filepath.Join(home, "config"), "extender.yml", `
profiles:
  - name: shared
    type: zosmf
    properties: {host: global.example.com}
  - name: global-only
    type: ssh
watch:
  debounce_ms: 250
logging:
  level: info
  format:
    preset: json
`)

	project := t.TempDir()
	testutil.WriteFile(t, project, "extender.yml", `
profiles:
  - name: shared
    type: zosmf
    properties: {host: project.example.com}
  - name: project-only
    type: zosmf
logging:
  level: debug
`)
	testutil.WriteFile(t, project, "extender.override.yml", `
views:
  job:
    disabled: true
`)

	cfg, err := LoadFrom(project)
	require.NoError(t, err)

	var names []string
	for _, p := range cfg.Profiles {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"shared", "global-only", "project-only"}, names)
	assert.Equal(t, "project.example.com", cfg.Profile("shared").Properties["host"])
	assert.Equal(t, 250, cfg.Watch.DebounceMs)
	require.NotNil(t, cfg.Views)
	assert.True(t, cfg.Views.Job.Disabled)

	logging, ok := cfg.Extensions["logging"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "debug", logging["level"])
	assert.NotNil(t, logging["format"], "extension maps merge key by key")

	assert.Len(t, cfg.Sources(), 3)

	layered, err := LoadLayered(project)
	require.NoError(t, err)
	assert.NotNil(t, layered.Global)
	assert.NotNil(t, layered.Project)
	require.Len(t, layered.Overrides, 1)
	assert.Equal(t, filepath.Join(project, "extender.yml"), layered.FilePaths[SourceProject])
	assert.Len(t, layered.Final.Profiles, 3)
}

func TestBrokenGlobalConfigIsSkipped(t *testing.T) {
	home := testutil.IsolateHome(t)
	testutil.WriteFile(t, filepath.Join(home, "config"), "extender.yml", "profiles: [\n")

	project := t.TempDir()
	testutil.WriteFile(t, project, "extender.yml", "profiles:\n  - {name: a, type: zosmf}\n")

	cfg, err := LoadFrom(project)
	require.NoError(t, err)
	assert.Len(t, cfg.Profiles, 1)
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profiles"`)
	assert.Contains(t, string(data), `"profile_types"`)
	assert.NotContains(t, string(data), `"Extensions"`)
}
