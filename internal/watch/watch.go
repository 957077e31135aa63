// Package watch reports changed Nushell scripts under a directory tree.
// Events are debounced and deduplicated, and the handler runs on the
// watcher goroutine, so at most one batch is processed at a time.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nix-mox/nuext/internal/elog"
	"github.com/nix-mox/nuext/internal/pathutil"
)

// Op is the kind of change observed.
type Op int

const (
	OpCreate Op = iota
	OpWrite
)

func (op Op) String() string {
	if op == OpCreate {
		return "create"
	}
	return "write"
}

// Change is one changed file in a batch.
type Change struct {
	Path string
	Op   Op
}

// Handler processes a batch of changes, sorted by path.
type Handler func(ctx context.Context, changes []Change)

// Options configure a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a batch is
	// delivered.
	Debounce time.Duration
	// Ignore lists directory base names that are not descended into.
	Ignore []string
	// Extension selects the files reported, without the dot.
	Extension string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Debounce:  300 * time.Millisecond,
		Ignore:    []string{".git", "node_modules", "result", ".direnv"},
		Extension: "nu",
	}
}

// Watcher watches a directory tree.
type Watcher struct {
	root    string
	handler Handler
	opts    Options
	fsw     *fsnotify.Watcher

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a watcher for root. Nothing is watched until Run is called.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.Extension == "" {
		opts.Extension = DefaultOptions().Extension
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s: not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		root:    root,
		handler: handler,
		opts:    opts,
		fsw:     fsw,
		ready:   make(chan struct{}),
	}, nil
}

// Ready is closed once the initial directory tree is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Pending changes are dropped on
// cancellation. Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.readyOnce.Do(func() { close(w.ready) })
	elog.Debug("watch: watching %s", w.root)

	pending := make(map[string]Op)
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event, pending) {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			elog.Warn("watch: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := drain(pending)
			elog.Debug("watch: %d changed file(s)", len(batch))
			w.handler(ctx, batch)
		}
	}
}

// handleEvent records a relevant event and reports whether it was recorded.
func (w *Watcher) handleEvent(event fsnotify.Event, pending map[string]Op) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && !w.ignored(event.Name) {
			if err := w.addTree(event.Name); err != nil {
				elog.Warn("watch: %v", err)
			}
		}
		return false
	}
	if !pathutil.HasExtension(event.Name, w.opts.Extension) {
		return false
	}

	op := OpWrite
	if event.Has(fsnotify.Create) {
		op = OpCreate
	}
	// A create followed by writes stays a create.
	if prev, seen := pending[event.Name]; !seen || prev != OpCreate {
		pending[event.Name] = op
	}
	return true
}

func (w *Watcher) ignored(path string) bool {
	return slices.Contains(w.opts.Ignore, filepath.Base(path))
}

// addTree watches dir and every directory below it that is not ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped; the root itself must be readable.
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func drain(pending map[string]Op) []Change {
	batch := make([]Change, 0, len(pending))
	for path, op := range pending {
		batch = append(batch, Change{Path: path, Op: op})
	}
	clear(pending)
	slices.SortFunc(batch, func(a, b Change) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	return batch
}
