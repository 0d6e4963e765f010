package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/reqs/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched in order in every directory.
var configNames = []string{
	"reqs.yml",
	"reqs.yaml",
	".reqs.yml",
	".reqs.yaml",
	"reqs.toml",
}

// Load reads and parses a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := decode(path, data)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault finds and loads the configuration starting from the current directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom finds the nearest configuration file at or above startDir and
// merges reqs.override.yml from the same directory over it.
func LoadFrom(startDir string) (*Config, error) {
	return LoadFromWithLogger(startDir, logrus.New())
}

// LoadOrDefault is LoadFrom, but a missing configuration yields defaults.
func LoadOrDefault(startDir string) (*Config, error) {
	cfg, err := LoadFrom(startDir)
	if errors.Is(err, errors.ErrCodeConfigNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFromWithLogger is LoadFrom with logging of each layer.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	path, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}

	logger.WithField("path", path).Debug("Loading project configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read project config").
			WithDetail("path", path)
	}
	cfg, err := decode(path, data)
	if err != nil {
		return nil, err
	}
	cfg.path = path

	dir := filepath.Dir(path)
	overrideFiles := []string{
		filepath.Join(dir, "reqs.override.yml"),
		filepath.Join(dir, "reqs.override.yaml"),
		filepath.Join(dir, ".reqs.override.yml"),
	}
	for _, overridePath := range overrideFiles {
		if _, err := os.Stat(overridePath); err != nil {
			continue
		}
		logger.WithField("path", overridePath).Debug("Loading local override configuration")

		overrideData, err := os.ReadFile(overridePath)
		if err != nil {
			logger.WithError(err).Warn("Failed to read override file, skipping")
			continue
		}
		override, err := decode(overridePath, overrideData)
		if err != nil {
			logger.WithError(err).Warn("Failed to parse override file, skipping")
			continue
		}
		cfg = mergeConfigs(cfg, override)
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded and validated successfully")
	return cfg, nil
}

// LoadFromBytes parses YAML configuration from a byte array
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := decode("reqs.yml", data)
	if err != nil {
		return nil, err
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode parses YAML, or TOML for .toml files. TOML is normalized through
// YAML so that unknown tables land in Extensions the same way.
func decode(path string, data []byte) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	if filepath.Ext(path) == ".toml" {
		var raw map[string]interface{}
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration").
				WithDetail("path", path)
		}
		normalized, err := yaml.Marshal(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to normalize TOML configuration").
				WithDetail("path", path)
		}
		expanded = normalized
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration").
			WithDetail("path", path)
	}
	return &cfg, nil
}

// finish applies defaults, resolves paths and validates.
func finish(cfg *Config) error {
	cfg.SetDefaults()

	if cfg.Project != "" && cfg.path != "" && !filepath.IsAbs(cfg.Project) {
		cfg.Project = filepath.Join(filepath.Dir(cfg.path), cfg.Project)
	}

	validator, err := SchemaValidator()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(cfg); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed").
			WithDetail("path", cfg.path)
	}

	return cfg.Validate()
}

// FindConfigFile searches for a configuration file from startDir up to the
// filesystem root.
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

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
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

		if value, ok := os.LookupEnv(varName); ok && value != "" {
			return value
		}
		return defaultValue
	})
}
