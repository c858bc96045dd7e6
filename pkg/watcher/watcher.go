// Package watcher reloads profiles when extender config files change.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/extender/logging"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is used when no positive debounce is configured.
const DefaultDebounce = 100 * time.Millisecond

// Reloader is the reload entry point of the extender broker.
type Reloader interface {
	ReloadProfiles(ctx context.Context, profileType string) error
}

// Watcher watches the directories holding config files and triggers a
// reload once writes settle.
type Watcher struct {
	fs           *fsnotify.Watcher
	reloader     Reloader
	debounce     time.Duration
	logger       *logrus.Entry
	onReload     func(file string, err error)
	targetToLink map[string]string

	mu      sync.Mutex
	pending string
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long writes must be quiet before reloading.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithOnReload registers a callback run after every reload attempt.
func WithOnReload(fn func(file string, err error)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New watches the directories of files. fsnotify does not follow
// symlinks, so the directories of symlink targets are watched as well.
func New(reloader Reloader, files []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:           fsw,
		reloader:     reloader,
		targetToLink: make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = logging.NewLogger("config-watcher")
	}

	watched := make(map[string]bool)
	watchDir := func(dir string) error {
		if watched[dir] {
			return nil
		}
		if err := fsw.Add(dir); err != nil {
			return err
		}
		watched[dir] = true
		w.logger.Debugf("Watching directory: %s", dir)
		return nil
	}

	for _, file := range files {
		if err := watchDir(filepath.Dir(file)); err != nil {
			fsw.Close()
			return nil, err
		}

		info, err := os.Lstat(file)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		target, err := filepath.EvalSymlinks(file)
		if err != nil {
			w.logger.WithError(err).Warnf("Failed to resolve symlink %s", file)
			continue
		}
		w.targetToLink[target] = file
		if err := watchDir(filepath.Dir(target)); err != nil {
			w.logger.WithError(err).Warnf("Failed to watch symlink target dir %s", filepath.Dir(target))
		}
	}

	return w, nil
}

// Run handles file events until ctx is cancelled. Reloads started before
// cancellation are waited for.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		w.fs.Close()
		w.wg.Wait()
	}()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			name := event.Name
			if link, ok := w.targetToLink[name]; ok {
				name = link
			}

			w.mu.Lock()
			w.pending = name
			w.mu.Unlock()

			// Restart the quiet period on every write.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.mu.Lock()
			file := w.pending
			w.pending = ""
			w.mu.Unlock()

			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.reload(ctx, file)
			}()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) reload(ctx context.Context, file string) {
	w.logger.Infof("Config changed: %s", filepath.Base(file))

	err := w.reloader.ReloadProfiles(ctx, "")
	if err != nil {
		w.logger.WithError(err).Error("Profile reload after config change failed")
	}
	if w.onReload != nil {
		w.onReload(file, err)
	}
}

// Close releases the underlying fsnotify watcher. It is only needed when
// Run is never called.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func isConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml", ".toml":
		return true
	default:
		return false
	}
}
