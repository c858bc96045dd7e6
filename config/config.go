package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/pkg/paths"
	"github.com/grovetools/extender/util/pathutil"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are the project config file names, in precedence order.
var configNames = []string{
	"extender.yml",
	"extender.yaml",
	".extender.yml",
	".extender.yaml",
	"extender.toml",
	".extender.toml",
}

// overrideNames are the local override file names, applied in order.
var overrideNames = []string{
	"extender.override.yml",
	"extender.override.yaml",
	".extender.override.yml",
	".extender.override.yaml",
	"extender.override.toml",
}

// Load reads, validates and parses a single configuration file.
func Load(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault finds and loads the configuration with hierarchical merging:
// 1. Global config (<config dir>/extender.yml) - base layer
// 2. Project config (extender.yml) - overrides global
// 3. Local override (extender.override.yml) - overrides all
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return LoadFromWithLogger(startDir, logger)
}

// LoadFromWithLogger loads configuration with hierarchical merging and logging
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	layered, err := loadLayers(startDir, logger)
	if err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(layered.Final); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(data))
		}
	}

	return layered.Final, nil
}

// LoadLayered finds and loads all configuration layers (global, project,
// overrides) and keeps them separate for analysis, along with the merged result.
func LoadLayered(startDir string) (*LayeredConfig, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return loadLayers(startDir, logger)
}

func loadLayers(startDir string, logger *logrus.Logger) (*LayeredConfig, error) {
	projectPath, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}

	layered := &LayeredConfig{
		FilePaths: make(map[ConfigSource]string),
	}
	layered.Default = &Config{}
	layered.Default.SetDefaults()

	finalConfig := &Config{}

	// 1. Global config (optional). Skipped when it is also the project file.
	globalPath := paths.GlobalConfigPath()
	if globalPath != "" && !pathutil.SamePath(globalPath, projectPath) {
		if _, err := os.Stat(globalPath); err == nil {
			logger.WithField("path", globalPath).Debug("Loading global configuration")
			globalConfig, err := parseFile(globalPath)
			if err != nil {
				logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
			} else {
				layered.Global = globalConfig
				layered.FilePaths[SourceGlobal] = globalPath
				finalConfig = mergeConfigs(finalConfig, globalConfig)
			}
		}
	}

	// 2. Project config (required)
	logger.WithField("path", projectPath).Debug("Loading project configuration")
	projectConfig, err := parseFile(projectPath)
	if err != nil {
		return nil, err
	}
	layered.Project = projectConfig
	layered.FilePaths[SourceProject] = projectPath
	finalConfig = mergeConfigs(finalConfig, projectConfig)

	// 3. Override files (optional)
	projectDir := filepath.Dir(projectPath)
	for _, name := range overrideNames {
		overridePath := filepath.Join(projectDir, name)
		if _, err := os.Stat(overridePath); err != nil {
			continue
		}
		logger.WithField("path", overridePath).Debug("Loading local override configuration")
		overrideConfig, err := parseFile(overridePath)
		if err != nil {
			logger.WithError(err).Warn("Failed to load override file, skipping")
			continue
		}
		layered.Overrides = append(layered.Overrides, OverrideSource{Path: overridePath, Config: overrideConfig})
		finalConfig = mergeConfigs(finalConfig, overrideConfig)
	}

	finalConfig.SetDefaults()
	if err := finalConfig.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded and validated successfully")
	layered.Final = finalConfig
	return layered, nil
}

// LoadFromBytes parses YAML configuration from a byte array
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := decode(data, formatYAML)
	if err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for extender configuration files with the following precedence:
// 1. Start directory up to filesystem root
// 2. Global config directory (<config dir>/extender.yml)
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if globalPath := paths.GlobalConfigPath(); globalPath != "" {
		if info, err := os.Stat(globalPath); err == nil && !info.IsDir() {
			return globalPath, nil
		}
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

type format string

const (
	formatYAML format = "yaml"
	formatTOML format = "toml"
)

func formatOf(path string) format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return formatTOML
	}
	return formatYAML
}

// parseFile reads and decodes one configuration file without defaults.
func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := decode(data, formatOf(path))
	if err != nil {
		if extErr, ok := err.(*errors.ExtenderError); ok {
			return nil, extErr.WithDetail("path", path)
		}
		return nil, err
	}
	cfg.sources = []string{path}
	return cfg, nil
}

// decode expands environment variables, validates the document against the
// schema and decodes it.
func decode(data []byte, f format) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var cfg Config
	var document interface{}
	switch f {
	case formatTOML:
		var raw map[string]interface{}
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		if err := toml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		for key, value := range raw {
			if knownKeys[key] {
				continue
			}
			if cfg.Extensions == nil {
				cfg.Extensions = make(map[string]interface{})
			}
			cfg.Extensions[key] = value
		}
		document = raw
	default:
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
		if err := yaml.Unmarshal(expanded, &document); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}

	if document != nil {
		validator, err := NewSchemaValidator()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create validator")
		}
		if err := validator.Validate(document); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed")
		}
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
