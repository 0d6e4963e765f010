package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromBytesDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("version: \"1.0\"\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultWatchDebounceMs, cfg.Editor.WatchDebounceMs)
	assert.Equal(t, "auto", cfg.Editor.Theme)
	assert.True(t, cfg.Editor.WatchEnabled())
	assert.False(t, cfg.Editor.InitialNotify)
}

// TestExtensions verifies that unknown top-level sections are kept for their owners
func TestExtensions(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
version: "1.0"
editor:
  theme: dark
logging:
  level: debug
  file:
    enabled: true
`))
	require.NoError(t, err)
	require.Contains(t, cfg.Extensions, "logging")

	type fileSink struct {
		Enabled bool `yaml:"enabled"`
	}
	var logCfg struct {
		Level string   `yaml:"level"`
		File  fileSink `yaml:"file"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
	assert.True(t, logCfg.File.Enabled)

	var missing struct{ Level string }
	require.NoError(t, cfg.UnmarshalExtension("absent", &missing))
	assert.Empty(t, missing.Level)
}

func TestLoadFromBytesInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad theme", "version: \"1.0\"\neditor:\n  theme: neon\n"},
		{"negative debounce", "version: \"1.0\"\neditor:\n  watch_debounce_ms: -5\n"},
		{"empty ignore pattern", "version: \"1.0\"\nignore: ['  ']\n"},
		{"malformed yaml", "version: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid), "got %v", err)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("REQS_TEST_PROJECT", "docs/reqs")

	assert.Equal(t, "project: docs/reqs", expandEnvVars("project: ${REQS_TEST_PROJECT}"))
	assert.Equal(t, "project: fallback", expandEnvVars("project: ${REQS_TEST_UNSET:-fallback}"))
	assert.Equal(t, "project: ", expandEnvVars("project: ${REQS_TEST_UNSET}"))
}

func TestLoadFromWalksUpAndResolvesProject(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "reqs.yml", "version: \"1.0\"\nproject: reqs\n")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := LoadFrom(nested)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "reqs.yml"), cfg.Path())
	assert.Equal(t, filepath.Join(dir, "reqs"), cfg.Project)
}

func TestLoadFromAppliesOverride(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "reqs.yml", `version: "1.0"
ignore: [build]
editor:
  theme: light
  extended_attribute: owner
`)
	testutil.WriteFile(t, dir, "reqs.override.yml", `editor:
  theme: dark
  watch: false
ignore: [tmp]
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "dark", cfg.Editor.Theme)
	assert.False(t, cfg.Editor.WatchEnabled())
	assert.Equal(t, "owner", cfg.Editor.ExtendedAttribute)
	assert.Equal(t, []string{"build", "tmp"}, cfg.Ignore)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "reqs.toml", `version = "1.0"
ignore = ["vendor"]

[editor]
theme = "light"
watch_debounce_ms = 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "light", cfg.Editor.Theme)
	assert.Equal(t, 50, cfg.Editor.WatchDebounceMs)
	assert.Equal(t, []string{"vendor"}, cfg.Ignore)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "reqs.yml"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))

	cfg, err := LoadOrDefault(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, cfg.Version)
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), "watch_debounce_ms")
	assert.NotContains(t, string(data), "Extensions")
}
