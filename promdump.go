// Package promdump captures a snapshot of the running process's heap object
// graph on demand, triggered by an OS signal, and persists it to a .prom
// file for later offline inspection with the promdump CLI.
//
// Typical use installs the trigger once at startup:
//
//	t, err := promdump.Install(nil, promdump.WithDir("/var/tmp"))
//	...
//	defer t.Close()
//
// and sends SIGUSR1 to the process whenever a dump is wanted.
package promdump

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/promdump/promdump/internal/config"
	"github.com/promdump/promdump/internal/fs"
	"github.com/promdump/promdump/internal/graph"
	"github.com/promdump/promdump/internal/heap"
	"github.com/promdump/promdump/internal/logging"
	"github.com/promdump/promdump/internal/report"
	"github.com/promdump/promdump/internal/snapshot"
	"github.com/promdump/promdump/internal/trigger"
)

// Trigger is the signal-bound dump coordinator.
type Trigger = trigger.Trigger

// Snapshot is the persisted unit: optional collector statistics plus one
// object graph.
type Snapshot = graph.Snapshot

// DefaultSignal triggers a dump unless configured otherwise.
var DefaultSignal os.Signal = syscall.SIGUSR1

// enumerator is shared by every trigger built through this package, so
// roots registered by the application are visible to all of them.
var enumerator = heap.NewRuntimeEnumerator()

// RegisterRoot adds an application structure as a walk root. Register the
// long-lived suspects (caches, registries) before installing the trigger.
// The root must be a non-nil pointer.
func RegisterRoot(name string, root any) error {
	return enumerator.RegisterRoot(name, root)
}

// Option adjusts the configuration a trigger is built from.
type Option func(*config.Config)

// WithDir sets the output directory. Default is the system temp dir.
func WithDir(dir string) Option {
	return func(c *config.Config) { c.Output.Dir = dir }
}

// WithNameTemplate sets the dump file name template, formatted with the
// process name, pid and capture timestamp.
func WithNameTemplate(tpl string) Option {
	return func(c *config.Config) { c.Output.NameTemplate = tpl }
}

// WithKeep prunes the output directory down to the newest n dumps after
// every write.
func WithKeep(n int) Option {
	return func(c *config.Config) { c.Output.Keep = n }
}

// WithSchedule adds periodic dumps per the cron expression, in addition to
// the signal.
func WithSchedule(expr string) Option {
	return func(c *config.Config) { c.Trigger.Schedule = expr }
}

// WithLogging sets the log level and format ("text" or "json").
func WithLogging(level, format string) Option {
	return func(c *config.Config) {
		c.Logging.Level = level
		c.Logging.Format = format
	}
}

// WithoutCompression writes dump files without the zstd frame.
func WithoutCompression() Option {
	return func(c *config.Config) { c.Output.Compression = "none" }
}

// Install builds a trigger from the options and installs it as the handler
// for sig. A nil sig installs for DefaultSignal.
func Install(sig os.Signal, opts ...Option) (*Trigger, error) {
	cfg := config.Default()
	for _, o := range opts {
		o(cfg)
	}
	return install(sig, cfg)
}

// InstallFromFile is Install configured from a YAML file; the signal comes
// from the file's trigger section.
func InstallFromFile(path string) (*Trigger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	sig, err := trigger.ParseSignal(cfg.Trigger.Signal)
	if err != nil {
		return nil, err
	}
	return install(sig, cfg)
}

// Uninstall reverts sig (or DefaultSignal when nil) to the platform default
// disposition.
func Uninstall(sig os.Signal) {
	if sig == nil {
		sig = DefaultSignal
	}
	signal.Reset(sig)
}

// Dump captures and writes one snapshot immediately, outside any signal,
// and returns the path written.
func Dump(opts ...Option) (string, error) {
	cfg := config.Default()
	for _, o := range opts {
		o(cfg)
	}
	return newTrigger(cfg).Dump()
}

// Load reads a previously written dump file back into memory.
func Load(path string) (*Snapshot, error) {
	return snapshot.NewStore(nil, nil, logging.Nop{}, false).Load(path)
}

// Report renders a loaded snapshot as text.
func Report(snap *Snapshot, w io.Writer) error {
	return report.Report(snap, w)
}

func install(sig os.Signal, cfg *config.Config) (*Trigger, error) {
	if sig == nil {
		sig = DefaultSignal
	}

	t := newTrigger(cfg)
	if cfg.Trigger.Schedule != "" {
		if err := t.Schedule(cfg.Trigger.Schedule); err != nil {
			t.Close()
			return nil, err
		}
	}
	t.Install(sig)
	return t, nil
}

func newTrigger(cfg *config.Config) *Trigger {
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	gatherer := heap.NewGatherer(enumerator, heap.RuntimeStats{}, log)
	store := snapshot.NewStore(fs.New(), gatherer, log, cfg.Output.Compression != "none")

	return trigger.New(cfg.Output.Dir, store, log,
		trigger.WithNameTemplate(cfg.Output.NameTemplate),
		trigger.WithKeep(cfg.Output.Keep),
	)
}
