package config

import (
	"os"

	"github.com/promdump/promdump/internal/procinfo"
)

type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Trigger TriggerConfig `yaml:"trigger"`
	Logging LoggingConfig `yaml:"logging"`
}

type OutputConfig struct {
	Dir          string `yaml:"dir"`
	NameTemplate string `yaml:"nameTemplate"`
	Compression  string `yaml:"compression"` // "zstd", "none"
	Keep         int    `yaml:"keep"`        // prune to last N dumps, 0 = keep all
}

type TriggerConfig struct {
	Signal   string `yaml:"signal"`   // e.g. "SIGUSR1"
	Schedule string `yaml:"schedule"` // optional cron expression
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info", "debug", etc.
	Format string `yaml:"format"` // "json", "text"
}

// Default returns the configuration used when no file is supplied: dumps go
// to the system temp dir, triggered by SIGUSR1, compressed, kept forever.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:          os.TempDir(),
			NameTemplate: procinfo.DefaultNameTemplate,
			Compression:  "zstd",
		},
		Trigger: TriggerConfig{
			Signal: "SIGUSR1",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
