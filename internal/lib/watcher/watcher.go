// Package watcher reports changes to a directory tree with fsnotify.
//
// Editors and uploads produce bursts of events (create, several writes,
// chmod). Watcher collapses a burst into one callback after the directory has
// been quiet for the debounce window.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before OnChange fires.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes under a directory tree, debounced.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func()
	fs       *fsnotify.Watcher
	logger   zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

// New watches root and every directory below it. onChange runs on its own
// goroutine after each debounced burst.
func New(root string, debounce time.Duration, onChange func(), logger *zerolog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		fs:       fsw,
		logger:   logger.With().Str("component", "watcher").Str("root", root).Logger(),
		done:     make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fs.Add(path); err != nil {
				return errors.Wrapf(err, "watch %s", path)
			}
		}
		return nil
	})
}

// Run processes events until Close is called.
func (w *Watcher) Run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("fsnotify error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	// New sub-directories need their own watch.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn().Err(err).Msg("could not watch new directory")
			}
		}
	}

	w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("fs event")

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}
	w.onChange()
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		err = w.fs.Close()
	})
	return err
}
