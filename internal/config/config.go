package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// FileNames lists the recognised config file names, in lookup order
var FileNames = []string{"dtogen.json", "dtogen.yaml", "dtogen.yml"}

// Config represents the dtogen.json (or dtogen.yaml) configuration file
type Config struct {
	Name        string       `json:"name" yaml:"name"`
	Language    string       `json:"language" yaml:"language"`
	Schema      string       `json:"schema" yaml:"schema"`
	Output      string       `json:"output" yaml:"output"`
	SupportObjC bool         `json:"supportObjC" yaml:"supportObjC"`
	Format      FormatConfig `json:"format" yaml:"format"`
	Watch       WatchConfig  `json:"watch" yaml:"watch"`
}

// FormatConfig controls the layout of generated sources
type FormatConfig struct {
	// Indent is "tab" or "space"
	Indent     string `json:"indent" yaml:"indent"`
	IndentSize int    `json:"indentSize,omitempty" yaml:"indentSize,omitempty"`
}

// WatchConfig contains file watching configuration
type WatchConfig struct {
	Patterns []string `json:"patterns" yaml:"patterns"`
	Exclude  []string `json:"exclude" yaml:"exclude"`
}

// LoadConfig loads the configuration from the current directory or a parent directory
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to get current directory")
	}

	return LoadConfigFromDir(dir)
}

// LoadConfigFromPath loads the configuration from a specific file.
// Files ending in .yaml or .yml are read as YAML, everything else as JSON.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", filepath.Base(path))
	}

	config.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills every unset field with its default value
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = "swift"
	}
	if c.Schema == "" {
		c.Schema = "./schema.dto.graphql"
	}
	if c.Output == "" {
		c.Output = "./Generated"
	}
	if c.Format.Indent == "" {
		c.Format.Indent = "tab"
	}
	if c.Format.Indent != "tab" && c.Format.IndentSize == 0 {
		c.Format.IndentSize = 4
	}
	if len(c.Watch.Patterns) == 0 {
		c.Watch.Patterns = []string{"*.dto.graphql", "**/*.dto.graphql"}
	}
	if len(c.Watch.Exclude) == 0 {
		c.Watch.Exclude = []string{".git/", "build/"}
	}
}

// LoadConfigFromDir searches for a config file in the given directory and its parents.
// It returns the config together with the directory it was found in.
func LoadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				config, err := LoadConfigFromPath(configPath)
				if err != nil {
					return nil, "", err
				}
				return config, dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	err := errors.Newf("no dtogen.json or dtogen.yaml found in %s or any parent directory", startDir)
	return nil, "", errors.WithHint(err, "run 'dtogen init' to create one")
}

// Resolve returns path relative to the project directory unless it is already absolute
func Resolve(projectDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
