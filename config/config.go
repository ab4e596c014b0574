// Package config loads the forksync configuration file.
//
// A config file is optional. When present it is read as YAML or TOML,
// ${VAR} references are expanded, the raw document is validated against
// the generated JSON Schema and then decoded over the defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/pkg/paths"
)

// ConfigEnv points at an explicit config file.
const ConfigEnv = "FORKSYNC_CONFIG"

// Format is a config file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ConfigNames are searched, in order, in the config directory.
var ConfigNames = []string{"config.yml", "config.yaml", "config.toml"}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// FormatFromPath picks the syntax from the file extension. Anything that
// is not .toml is treated as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := LoadFromBytes(data, FormatFromPath(path))
	if err != nil {
		if fe, ok := errors.As(err); ok {
			return nil, fe.WithDetail("path", path)
		}
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// LoadDefault loads .env files, then the config named by FORKSYNC_CONFIG
// or the first of ConfigNames in the config directory. With no file the
// defaults are returned.
func LoadDefault() (*Config, error) {
	return LoadDefaultWithLogger(logrus.StandardLogger())
}

// LoadDefaultWithLogger is LoadDefault with debug output sent to logger.
func LoadDefaultWithLogger(logger *logrus.Logger) (*Config, error) {
	cwd, _ := os.Getwd()
	for _, loaded := range LoadEnvFiles(cwd, paths.ConfigDir()) {
		logger.WithField("path", loaded).Debug("Loaded environment file")
	}

	if explicit := os.Getenv(ConfigEnv); explicit != "" {
		logger.WithField("path", explicit).Debug("Loading configuration from " + ConfigEnv)
		return Load(explicit)
	}

	path, err := FindConfigFile(paths.ConfigDir())
	if err != nil {
		if errors.Is(err, errors.ErrCodeConfigNotFound) {
			logger.Debug("No configuration file found, using defaults")
			return Default(), nil
		}
		return nil, err
	}

	logger.WithField("path", path).Debug("Loading configuration")
	return Load(path)
}

// LoadFromBytes parses configuration in the given format.
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	doc, err := parseDocument([]byte(expandEnvVars(string(data))), format)
	if err != nil {
		return nil, err
	}

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	cfg, err := decode(doc)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDocument turns the raw file into a JSON-compatible map.
func parseDocument(data []byte, format Format) (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	// Normalize through JSON so nested maps and numbers look the same
	// regardless of which parser produced them.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "configuration is not representable as JSON")
	}
	normalized := map[string]interface{}{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to normalize configuration")
	}
	return normalized, nil
}

// decode applies the document over the defaults.
func decode(doc map[string]interface{}) (*Config, error) {
	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create mapstructure decoder")
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}
	cfg.ToolHome = paths.ExpandHome(cfg.ToolHome)
	return cfg, nil
}

// FindConfigFile returns the first of ConfigNames present in dir.
func FindConfigFile(dir string) (string, error) {
	if dir == "" {
		return "", errors.ConfigNotFound(dir)
	}
	for _, name := range ConfigNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(dir).WithDetail("searchPath", dir)
}

// LoadEnvFiles loads a .env file from each directory that has one.
// Variables already set in the environment are never overridden. The
// loaded file paths are returned.
func LoadEnvFiles(dirs ...string) []string {
	var loaded []string
	seen := map[string]bool{}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, ".env")
		if seen[path] {
			continue
		}
		seen[path] = true
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("Failed to load environment file")
			continue
		}
		loaded = append(loaded, path)
	}
	return loaded
}

// expandEnvVars replaces ${VAR} with environment variable values.
// ${VAR:-default} falls back to default when VAR is unset or empty.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

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

// Marshal renders the configuration in the given format.
func (c *Config) Marshal(format Format) ([]byte, error) {
	doc := c.Document()
	if format == FormatTOML {
		return toml.Marshal(doc)
	}
	return yaml.Marshal(doc)
}
