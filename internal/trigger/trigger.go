// Package trigger binds capture+write cycles to an OS signal and,
// optionally, a cron schedule. One Trigger is the single coordinator for
// the process-global signal disposition it manages; install and uninstall
// must not be called concurrently from multiple goroutines.
package trigger

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/promdump/promdump/internal/logging"
	"github.com/promdump/promdump/internal/procinfo"
	"github.com/promdump/promdump/internal/snapshot"
)

// request is one pending dump. Process info is read at trigger time, not
// when the dump actually runs, so the file name reflects the moment of
// delivery.
type request struct {
	info procinfo.Info
}

type Trigger struct {
	dir      string
	template string
	keep     int
	store    *snapshot.Store
	log      logging.Logger

	mu   sync.Mutex
	sig  os.Signal
	cron *cron.Cron

	ch        chan os.Signal
	box       *mailbox
	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type Option func(*Trigger)

// WithNameTemplate overrides the dump file name template. It receives the
// process name, pid and capture timestamp.
func WithNameTemplate(tpl string) Option {
	return func(t *Trigger) { t.template = tpl }
}

// WithKeep enables pruning of old dump files, keeping the newest n.
func WithKeep(n int) Option {
	return func(t *Trigger) { t.keep = n }
}

// New creates a trigger writing dumps into dir through store. The store
// performs capture-on-write, so the trigger itself never holds a snapshot.
func New(dir string, store *snapshot.Store, log logging.Logger, opts ...Option) *Trigger {
	if log == nil {
		log = logging.Nop{}
	}
	t := &Trigger{
		dir:      dir,
		template: procinfo.DefaultNameTemplate,
		store:    store,
		log:      log,
		ch:       make(chan os.Signal, 1),
		box:      newMailbox(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Install registers the trigger as the handler for sig. Installing for a
// different signal re-binds the trigger but leaves the previous signal's
// OS registration in place; resetting that one remains the caller's
// responsibility.
func (t *Trigger) Install(sig os.Signal) {
	t.mu.Lock()
	if t.sig != nil && t.sig != sig {
		t.log.Info("re-binding trigger from %v to %v, previous handler left installed", t.sig, sig)
	}
	t.sig = sig
	t.mu.Unlock()

	t.log.Info("installing dump handler for signal %v", sig)
	signal.Notify(t.ch, sig)
	t.start()
}

// Uninstall restores the platform default disposition for sig.
func (t *Trigger) Uninstall(sig os.Signal) {
	t.log.Info("restoring default handler for signal %v", sig)
	signal.Reset(sig)

	t.mu.Lock()
	if t.sig == sig {
		t.sig = nil
	}
	t.mu.Unlock()
}

// Schedule arranges periodic dumps per the cron expression, sharing the
// signal path's run loop and coalescing semantics.
func (t *Trigger) Schedule(expr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron == nil {
		t.cron = cron.New()
	}
	_, err := t.cron.AddFunc(expr, func() {
		t.box.put(request{info: procinfo.Capture()})
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	t.cron.Start()
	t.start()
	return nil
}

// Dump performs one immediate, synchronous capture+write cycle outside any
// signal context and returns the path written.
func (t *Trigger) Dump() (string, error) {
	info := procinfo.Capture()
	path := filepath.Join(t.dir, info.FileName(t.template))
	if err := t.store.Write(context.Background(), nil, path); err != nil {
		return "", err
	}
	t.prune()
	return path, nil
}

// Close stops the run loops and the schedule. It does not touch signal
// dispositions; use Uninstall for that.
func (t *Trigger) Close() {
	t.closeOnce.Do(func() {
		signal.Stop(t.ch)
		t.mu.Lock()
		if t.cron != nil {
			t.cron.Stop()
		}
		t.mu.Unlock()
		close(t.ch)
		t.box.close()
		t.wg.Wait()
	})
}

func (t *Trigger) start() {
	t.startOnce.Do(func() {
		t.wg.Add(2)
		go t.notify()
		go t.run()
	})
}

// notify turns signal deliveries into dump requests. Process info is read
// synchronously here, inside the handling context.
func (t *Trigger) notify() {
	defer t.wg.Done()
	for sig := range t.ch {
		t.log.Info("received signal %v, dumping", sig)
		t.box.put(request{info: procinfo.Capture()})
	}
}

// run executes dump requests one at a time. Gather-then-write is strictly
// sequential per request; any error is logged and swallowed because a
// failed dump must never disturb the host process.
func (t *Trigger) run() {
	defer t.wg.Done()
	for {
		req, ok := t.box.take()
		if !ok {
			return
		}

		path := filepath.Join(t.dir, req.info.FileName(t.template))
		if err := t.store.Write(context.Background(), nil, path); err != nil {
			t.log.Error("dump failed: %v", err)
			continue
		}
		t.log.Info("dumped object graph to %s", path)
		t.prune()
	}
}
