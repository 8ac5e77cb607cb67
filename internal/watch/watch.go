// Package watch reruns a build whenever the guide input tree changes.
// Filesystem events are debounced so editor save bursts collapse into one
// rebuild, and an optional fixed interval rebuild backstops editors whose
// atomic-save strategies defeat inotify. One build runs at a time; watch
// never overlaps builds.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/ArdonToonstra/simplifier-ig/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Builder runs one build. Watch treats build failures as reportable, not
// fatal: the loop keeps watching so the next save can fix the input.
type Builder func(ctx context.Context) error

// Options configure a watcher.
type Options struct {
	// Debounce is the quiet period before a rebuild; zero means
	// DefaultDebounce.
	Debounce time.Duration
	// Interval adds a periodic rebuild when positive.
	Interval time.Duration
	// Ignore lists path prefixes whose events are discarded, typically the
	// output tree when it lives inside the input tree.
	Ignore []string

	Logger *slog.Logger
}

// Watcher drives rebuilds for one input tree.
type Watcher struct {
	input    string
	build    Builder
	debounce time.Duration
	interval time.Duration
	ignore   []string
	log      *slog.Logger

	trigger chan struct{}
	builds  int
}

// New creates a watcher over the input tree.
func New(input string, build Builder, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ignore := make([]string, 0, len(opts.Ignore))
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignore = append(ignore, abs)
		}
	}
	return &Watcher{
		input:    input,
		build:    build,
		debounce: opts.Debounce,
		interval: opts.Interval,
		ignore:   ignore,
		log:      log,
		trigger:  make(chan struct{}, 1),
	}
}

// Builds returns how many builds have run. Only meaningful after Run
// returned.
func (w *Watcher) Builds() int { return w.builds }

// Run performs an initial build and then rebuilds on changes until ctx is
// canceled. Cancellation is the normal way to stop watching and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	w.buildOnce(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := w.watchTree(fw, w.input); err != nil {
		return err
	}
	w.log.Info("watching for changes", logfields.Input(w.input))

	if w.interval > 0 {
		sched, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create interval scheduler: %w", err)
		}
		_, err = sched.NewJob(
			gocron.DurationJob(w.interval),
			gocron.NewTask(w.requestRebuild),
			gocron.WithName("interval-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule interval rebuild: %w", err)
		}
		sched.Start()
		defer func() { _ = sched.Shutdown() }()
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				w.watchIfNewDir(fw, ev.Name)
			}
			arm()

		case <-w.trigger:
			arm()

		case <-timerC:
			timer = nil
			timerC = nil
			w.buildOnce(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("file watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) buildOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	w.builds++
	start := time.Now()
	if err := w.build(ctx); err != nil {
		w.log.Error("build failed", logfields.Error(err))
		return
	}
	w.log.Info("build finished",
		logfields.DurationMS(float64(time.Since(start))/float64(time.Millisecond)))
}

// requestRebuild arms the debounce without blocking; a pending request
// already covers this one.
func (w *Watcher) requestRebuild() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// watchTree registers dir and every subdirectory. fsnotify watches are not
// recursive, so each directory needs its own registration.
func (w *Watcher) watchTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && hiddenName(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) watchIfNewDir(fw *fsnotify.Watcher, name string) {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() || hiddenName(filepath.Base(name)) {
		return
	}
	if err := w.watchTree(fw, name); err != nil {
		w.log.Error("cannot watch new directory", logfields.Path(name), logfields.Error(err))
	}
}

// relevant filters out events that must not trigger a rebuild: permission
// churn, hidden files such as VCS metadata, and ignored prefixes.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if hiddenPath(ev.Name) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return true
	}
	for _, prefix := range w.ignore {
		if abs == prefix || strings.HasPrefix(abs, prefix+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

func hiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func hiddenPath(p string) bool {
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if hiddenName(part) {
			return true
		}
	}
	return false
}
