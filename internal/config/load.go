package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := envPattern.FindStringSubmatch(m)[1]
		return os.Getenv(key)
	})
}

// Load reads a YAML config file, expands $(ENV_VAR) placeholders and fills
// unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults refills fields an explicit empty value would otherwise
// leave blank after unmarshalling over Default.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Output.NameTemplate == "" {
		cfg.Output.NameTemplate = def.Output.NameTemplate
	}
	if cfg.Output.Compression == "" {
		cfg.Output.Compression = def.Output.Compression
	}
	if cfg.Trigger.Signal == "" {
		cfg.Trigger.Signal = def.Trigger.Signal
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}
