package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const (
	// DefaultVersion is written to configs that do not declare one.
	DefaultVersion = "1.0"
	// DefaultWatchDebounceMs is the quiet period before an external change reloads the project.
	DefaultWatchDebounceMs = 200
)

// EditorConfig controls the interactive editor.
type EditorConfig struct {
	// InitialNotify makes observers run once as soon as they are registered.
	InitialNotify bool `yaml:"initial_notify,omitempty" json:"initial_notify,omitempty" jsonschema:"description=Call view observers once when they register"`
	// Watch reloads the project when its files change on disk and nothing is pending.
	Watch *bool `yaml:"watch,omitempty" json:"watch,omitempty" jsonschema:"description=Reload the project on external changes (default: true)"`
	// WatchDebounceMs groups rapid file events.
	WatchDebounceMs int `yaml:"watch_debounce_ms,omitempty" json:"watch_debounce_ms,omitempty" jsonschema:"minimum=0,description=Quiet period in milliseconds before reloading"`
	// Theme is "auto", "dark" or "light".
	Theme string `yaml:"theme,omitempty" json:"theme,omitempty" jsonschema:"enum=auto,enum=dark,enum=light,description=Color theme"`
	// ExtendedAttribute is the attribute shown when a project opens.
	ExtendedAttribute string `yaml:"extended_attribute,omitempty" json:"extended_attribute,omitempty" jsonschema:"description=Extended attribute shown by default"`
	// Keys overrides editor bindings by snake_case name, e.g. edit_text: [E].
	Keys map[string][]string `yaml:"keys,omitempty" json:"keys,omitempty" jsonschema:"description=Key binding overrides by binding name"`
}

// WatchEnabled reports whether external changes should be watched.
func (e EditorConfig) WatchEnabled() bool {
	return e.Watch == nil || *e.Watch
}

// Config is the content of reqs.yml.
type Config struct {
	Version string `yaml:"version" json:"version" jsonschema:"required,description=Configuration version (e.g. '1.0')"`
	// Project is the default project directory, relative to the config file.
	Project string `yaml:"project,omitempty" json:"project,omitempty" jsonschema:"description=Default project directory"`
	// Ignore lists directory patterns skipped during document discovery.
	Ignore []string     `yaml:"ignore,omitempty" json:"ignore,omitempty" jsonschema:"description=Directories skipped when discovering documents"`
	Editor EditorConfig `yaml:"editor,omitempty" json:"editor,omitempty" jsonschema:"description=Interactive editor settings"`

	// Extensions captures all other top-level keys, such as "logging".
	Extensions map[string]interface{} `yaml:",inline" json:"-" jsonschema:"-"`

	// path is the file the config was loaded from, if any.
	path string
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Editor.WatchDebounceMs == 0 {
		c.Editor.WatchDebounceMs = DefaultWatchDebounceMs
	}
	if c.Editor.Theme == "" {
		c.Editor.Theme = "auto"
	}
}

// Default returns a configuration with only default values.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded reqs.yml into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
