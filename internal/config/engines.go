package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// EngineConfig is one engine's block in engines.yaml.
type EngineConfig struct {
	Name     string                 `yaml:"name"`
	Enabled  bool                   `yaml:"enabled"`
	Settings map[string]interface{} `yaml:"settings"`
}

// EnginesConfig is the full engines.yaml document.
type EnginesConfig struct {
	Engines []EngineConfig `yaml:"engines"`
}

// envPattern matches ${VAR} references in settings values.
var envPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// LoadEnginesConfig reads and parses an engines.yaml file, expanding ${VAR}
// references in string settings against the environment. A missing file
// yields the default configuration with every known engine enabled.
func LoadEnginesConfig(path string) (*EnginesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultEnginesConfig(), nil
		}
		return nil, fmt.Errorf("read engines config: %w", err)
	}

	var cfg EnginesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse engines config: %w", err)
	}

	for i := range cfg.Engines {
		cfg.Engines[i].Settings = expandSettings(cfg.Engines[i].Settings)
	}
	return &cfg, nil
}

// DefaultEnginesConfig enables the local and relay engines with empty
// settings so their env fallbacks apply.
func DefaultEnginesConfig() *EnginesConfig {
	return &EnginesConfig{
		Engines: []EngineConfig{
			{Name: "whisper", Enabled: true, Settings: map[string]interface{}{}},
			{Name: "asterisk-aeap", Enabled: true, Settings: map[string]interface{}{}},
		},
	}
}

// Enabled returns the enabled engine blocks in file order.
func (c *EnginesConfig) Enabled() []EngineConfig {
	out := make([]EngineConfig, 0, len(c.Engines))
	for _, e := range c.Engines {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

func expandSettings(settings map[string]interface{}) map[string]interface{} {
	if settings == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(settings))
	for k, v := range settings {
		if s, ok := v.(string); ok {
			out[k] = envPattern.ReplaceAllStringFunc(s, func(m string) string {
				return os.Getenv(envPattern.FindStringSubmatch(m)[1])
			})
			continue
		}
		out[k] = v
	}
	return out
}
