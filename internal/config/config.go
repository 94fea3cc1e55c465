package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileNames are the project config files tried in order.
var FileNames = []string{"diffdiagram.yml", "diffdiagram.yaml"}

// ProjectConfig holds project-level settings loaded from diffdiagram.yml.
type ProjectConfig struct {
	GrammarDir           string `yaml:"grammarDir,omitempty"`
	InstallMissing       bool   `yaml:"installMissing,omitempty"`
	SaveDefaultIfMissing *bool  `yaml:"saveDefaultIfMissing,omitempty"`
	ParseTimeoutMicros   int64  `yaml:"parseTimeoutMicros,omitempty"`
	Format               string `yaml:"format,omitempty"`
	GraphStore           string `yaml:"graphStore,omitempty"`
}

// Load attempts to read diffdiagram.yml or diffdiagram.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if cfg.ParseTimeoutMicros < 0 {
			return nil, fmt.Errorf("%s: parseTimeoutMicros must not be negative", name)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// ParseTimeout returns the configured parse timeout, or zero when unset.
func (c *ProjectConfig) ParseTimeout() time.Duration {
	return time.Duration(c.ParseTimeoutMicros) * time.Microsecond
}

// SaveDefaults reports whether missing grammar config files should be
// written. It defaults to true.
func (c *ProjectConfig) SaveDefaults() bool {
	if c.SaveDefaultIfMissing == nil {
		return true
	}
	return *c.SaveDefaultIfMissing
}
