package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ProfileConfig defines a single connection profile.
type ProfileConfig struct {
	Name       string                 `yaml:"name" toml:"name" json:"name" jsonschema:"required,minLength=1,description=Unique profile name"`
	Type       string                 `yaml:"type" toml:"type" json:"type" jsonschema:"required,minLength=1,description=Profile type such as zosmf or ssh"`
	Default    bool                   `yaml:"default,omitempty" toml:"default,omitempty" json:"default,omitempty" jsonschema:"description=Whether this is the default profile for its type"`
	Properties map[string]interface{} `yaml:"properties,omitempty" toml:"properties,omitempty" json:"properties,omitempty" jsonschema:"description=Type-specific connection properties"`
	Links      map[string]string      `yaml:"links,omitempty" toml:"links,omitempty" json:"links,omitempty" jsonschema:"description=Linked profiles keyed by profile type"`
}

// ViewConfig selects which profile types a tree view shows as sessions.
type ViewConfig struct {
	ProfileTypes []string `yaml:"profile_types,omitempty" toml:"profile_types,omitempty" json:"profile_types,omitempty" jsonschema:"description=Profile types shown as sessions in this view"`
	Disabled     bool     `yaml:"disabled,omitempty" toml:"disabled,omitempty" json:"disabled,omitempty" jsonschema:"description=Hide this view"`
}

// ViewsConfig groups the three explorer views.
type ViewsConfig struct {
	Dataset    *ViewConfig `yaml:"dataset,omitempty" toml:"dataset,omitempty" json:"dataset,omitempty" jsonschema:"description=Data set view"`
	Filesystem *ViewConfig `yaml:"filesystem,omitempty" toml:"filesystem,omitempty" json:"filesystem,omitempty" jsonschema:"description=Filesystem (USS) view"`
	Job        *ViewConfig `yaml:"job,omitempty" toml:"job,omitempty" json:"job,omitempty" jsonschema:"description=Job view"`
}

// WatchConfig controls the profile config watcher.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"description=Reload profiles when config files change (default: true)"`
	DebounceMs int   `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty" json:"debounce_ms,omitempty" jsonschema:"minimum=0,description=Debounce window for rapid config changes in milliseconds (default: 100)"`
}

// Config represents the extender.yml configuration
type Config struct {
	Version  string          `yaml:"version" toml:"version" json:"version" jsonschema:"description=Configuration version (e.g. 1.0)"`
	Profiles []ProfileConfig `yaml:"profiles,omitempty" toml:"profiles,omitempty" json:"profiles,omitempty" jsonschema:"description=Connection profiles"`
	Views    *ViewsConfig    `yaml:"views,omitempty" toml:"views,omitempty" json:"views,omitempty" jsonschema:"description=Explorer view settings"`
	Watch    *WatchConfig    `yaml:"watch,omitempty" toml:"watch,omitempty" json:"watch,omitempty" jsonschema:"description=Config watcher settings"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`

	// sources lists the files this config was merged from, in load order.
	sources []string `jsonschema:"-"`
}

// knownKeys are the top-level keys that are not extensions.
var knownKeys = map[string]bool{
	"version":  true,
	"profiles": true,
	"views":    true,
	"watch":    true,
}

// Sources returns the files this configuration was loaded from.
func (c *Config) Sources() []string {
	return append([]string(nil), c.sources...)
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}

	if c.Watch == nil {
		c.Watch = &WatchConfig{}
	}
	if c.Watch.Enabled == nil {
		trueVal := true
		c.Watch.Enabled = &trueVal
	}
	if c.Watch.DebounceMs <= 0 {
		c.Watch.DebounceMs = 100
	}
}

// Profile returns the profile configuration with the given name, or nil.
func (c *Config) Profile(name string) *ProfileConfig {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded extender.yml into the provided target struct. The target must be a
// pointer.
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
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// ConfigSource identifies one configuration layer.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceGlobal   ConfigSource = "global"
	SourceProject  ConfigSource = "project"
	SourceOverride ConfigSource = "override"
)

// OverrideSource is one loaded override file.
type OverrideSource struct {
	Path   string
	Config *Config
}

// LayeredConfig holds every configuration layer separately plus the merged
// result, for inspection.
type LayeredConfig struct {
	Default   *Config
	Global    *Config
	Project   *Config
	Overrides []OverrideSource
	Final     *Config
	FilePaths map[ConfigSource]string
}
