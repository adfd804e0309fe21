package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promdump/promdump/internal/procinfo"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "promdump.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("PROMDUMP_TEST_DIR", "/var/tmp/dumps")

	cfg, err := Load(writeConfig(t, `
output:
  dir: $(PROMDUMP_TEST_DIR)
  keep: 3
trigger:
  signal: SIGUSR2
  schedule: "@hourly"
`))
	require.NoError(t, err)

	assert.Equal(t, "/var/tmp/dumps", cfg.Output.Dir)
	assert.Equal(t, 3, cfg.Output.Keep)
	assert.Equal(t, "SIGUSR2", cfg.Trigger.Signal)
	assert.Equal(t, "@hourly", cfg.Trigger.Schedule)
}

func TestLoadFillsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
logging:
  level: debug
`))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Output.Dir, cfg.Output.Dir)
	assert.Equal(t, procinfo.DefaultNameTemplate, cfg.Output.NameTemplate)
	assert.Equal(t, "zstd", cfg.Output.Compression)
	assert.Equal(t, "SIGUSR1", cfg.Trigger.Signal)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "output: [not a mapping"))
	assert.Error(t, err)
}
