package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promdump/promdump/internal/graph"
	"github.com/promdump/promdump/internal/logging"
	"github.com/promdump/promdump/internal/snapshot"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code = run(args, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func TestReportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.prom")
	store := snapshot.NewStore(nil, nil, logging.Nop{}, true)
	snap := &graph.Snapshot{
		Stats: []graph.GenStats{{"collections": 1}},
		Graph: graph.Graph{7: {Desc: "thing", Size: 8}},
	}
	require.NoError(t, store.Write(context.Background(), snap, path))

	code, stdout, _ := runCLI(t, "report", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Collection statistics")
	assert.Contains(t, stdout, "Object graph")
	assert.Contains(t, stdout, "7\tthing")
}

func TestReportNonexistentPathIsUsageError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.prom")

	code, stdout, stderr := runCLI(t, "report", missing)
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Usage")

	_, err := os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "usage failure must not create the file")
}

func TestReportCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.prom")
	require.NoError(t, os.WriteFile(path, []byte("nonsense"), 0o644))

	code, stdout, stderr := runCLI(t, "report", path)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "corrupt")
}

func TestUnknownSubcommand(t *testing.T) {
	code, _, stderr := runCLI(t, "explode", "x")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage")
}

func TestNoArguments(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage")
}
