package trigger

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// prune keeps only the newest dump files in the output directory. It is
// disabled by default (keep <= 0) and exists for scheduled dumps, which
// would otherwise fill the disk over time.
func (t *Trigger) prune() {
	if t.keep <= 0 {
		return
	}

	dumps, err := scanDumps(t.dir)
	if err != nil {
		t.log.Error("retention: scanning %s: %v", t.dir, err)
		return
	}
	if len(dumps) <= t.keep {
		return
	}

	// newest first
	sort.Slice(dumps, func(i, j int) bool { return dumps[i].ts > dumps[j].ts })

	for _, d := range dumps[t.keep:] {
		if err := os.Remove(d.path); err != nil {
			t.log.Error("retention: removing %s: %v", d.path, err)
			continue
		}
		t.log.Info("retention: removed %s", d.path)
	}
}

type dumpFile struct {
	path string
	ts   int64
}

// scanDumps finds dump files in dir by their trailing "-<ts>.prom" part.
// Files that do not match the naming pattern are left alone.
func scanDumps(dir string) ([]dumpFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dumps []dumpFile
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, ".prom") {
			continue
		}

		core := strings.TrimSuffix(name, ".prom")
		idx := strings.LastIndex(core, "-")
		if idx < 0 {
			continue
		}
		ts, err := strconv.ParseInt(core[idx+1:], 10, 64)
		if err != nil {
			continue
		}

		dumps = append(dumps, dumpFile{path: filepath.Join(dir, name), ts: ts})
	}
	return dumps, nil
}
