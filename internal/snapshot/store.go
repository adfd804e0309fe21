// Package snapshot persists captured object graphs, one snapshot per file.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/promdump/promdump/internal/fs"
	"github.com/promdump/promdump/internal/graph"
	"github.com/promdump/promdump/internal/logging"
)

// Capturer produces a fresh snapshot of the current heap. Implemented by
// heap.Gatherer.
type Capturer interface {
	Gather() (*graph.Snapshot, error)
}

// Store writes and loads dump files. The write path and the load path are
// fully decoupled; nothing requires the writing process to still be alive.
type Store struct {
	fs       fs.FS
	capture  Capturer
	log      logging.Logger
	compress bool
}

// NewStore creates a store. capture may be nil when only explicit snapshots
// will be written; filesystem nil means the local OS filesystem.
func NewStore(filesystem fs.FS, capture Capturer, log logging.Logger, compress bool) *Store {
	if filesystem == nil {
		filesystem = fs.New()
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Store{fs: filesystem, capture: capture, log: log, compress: compress}
}

// Write persists exactly one snapshot to path. A nil snapshot captures one
// first. The file becomes visible all-or-nothing via a temp sibling and
// rename, and an existing path fails with ErrAlreadyExists, never an
// overwrite.
func (s *Store) Write(ctx context.Context, snap *graph.Snapshot, path string) error {
	if _, err := s.fs.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if snap == nil {
		if s.capture == nil {
			return errors.New("no snapshot supplied and no capturer configured")
		}
		var err error
		snap, err = s.capture.Gather()
		if err != nil {
			return fmt.Errorf("capturing snapshot: %w", err)
		}
	}

	data, err := encode(snap, s.compress)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	s.log.Debug("saving object graph to %s", path)

	tmp := filepath.Join(dir, ".tmp-"+filepath.Base(path))
	if err := s.fs.WriteFile(tmp, data); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := s.fs.Rename(ctx, tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

// Load reads one snapshot back from path. Unparseable contents surface as
// ErrCorruptData.
func (s *Store) Load(path string) (*graph.Snapshot, error) {
	s.log.Debug("loading object graph from %s", path)

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	snap, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}
