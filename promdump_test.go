package promdump_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promdump/promdump"
)

func TestDumpLoadReport(t *testing.T) {
	dir := t.TempDir()

	path, err := promdump.Dump(
		promdump.WithDir(dir),
		promdump.WithLogging("error", "text"),
	)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".prom"))

	snap, err := promdump.Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, snap.Graph, "a running process always has live objects")
	require.NotNil(t, snap.Stats, "the Go runtime exposes collector statistics")

	var buf bytes.Buffer
	require.NoError(t, promdump.Report(snap, &buf))
	assert.Contains(t, buf.String(), "Collection statistics")
	assert.Contains(t, buf.String(), "Object graph")
}

type appCache struct {
	Marker  string
	Entries map[string]*appEntry
}

type appEntry struct {
	Value string
}

func TestRegisteredRootsAppearInDumps(t *testing.T) {
	cache := &appCache{
		Marker:  "sentinel-7f3a9c",
		Entries: map[string]*appEntry{"k": {Value: "v"}},
	}
	require.NoError(t, promdump.RegisterRoot("cache", cache))

	path, err := promdump.Dump(
		promdump.WithDir(t.TempDir()),
		promdump.WithLogging("error", "text"),
	)
	require.NoError(t, err)

	snap, err := promdump.Load(path)
	require.NoError(t, err)

	found := false
	for _, node := range snap.Graph {
		if strings.Contains(node.Desc, "sentinel-7f3a9c") {
			found = true
			break
		}
	}
	assert.True(t, found, "registered root must show up in the graph")
}

func TestDumpWithoutCompression(t *testing.T) {
	path, err := promdump.Dump(
		promdump.WithDir(t.TempDir()),
		promdump.WithoutCompression(),
		promdump.WithLogging("error", "text"),
	)
	require.NoError(t, err)

	snap, err := promdump.Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Graph)
}

func TestInstallFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "promdump.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
output:
  dir: `+dir+`
trigger:
  signal: SIGUSR2
logging:
  level: error
`), 0o644))

	tr, err := promdump.InstallFromFile(cfgPath)
	require.NoError(t, err)
	defer tr.Close()
	defer promdump.Uninstall(syscall.SIGUSR2)

	// the trigger works outside the signal path too
	path, err := tr.Dump()
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestInstallFromFileBadSignal(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "promdump.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("trigger:\n  signal: SIGNOPE\n"), 0o644))

	_, err := promdump.InstallFromFile(cfgPath)
	assert.Error(t, err)
}
