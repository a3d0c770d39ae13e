// file: internal/watcher/watcher.go
// version: 2.1.0
// guid: b2c3d4e5-f6a7-8901-bcde-f23456789012

package watcher

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// imageExtensions are the local thumbnail file types worth reacting to.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// DefaultDebounce is the default settle period before invalidations fire.
const DefaultDebounce = 2 * time.Second

// Callback is invoked after the debounce period with the ISBNs whose
// local thumbnail files changed.
type Callback func(isbns []string)

// Watcher monitors the local thumbnails directory and invokes a callback
// with the affected ISBNs after events settle. Cached resolutions for
// those ISBNs are stale the moment a file appears or disappears, so the
// callback is typically a cache invalidation.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	rootDir   string
	debounce  time.Duration
	callback  Callback
	stop      chan struct{}
	stopped   chan struct{}
	mu        sync.Mutex
	timer     *time.Timer
	pending   map[string]bool
	running   bool
}

// New creates a Watcher. The callback is called with the changed ISBNs
// after events settle for the debounce duration. Pass 0 for debounce to
// use DefaultDebounce.
func New(callback Callback, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		debounce: debounce,
		callback: callback,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
		pending:  make(map[string]bool),
	}
}

// Start begins watching rootDir recursively. It is safe to call only once.
func (w *Watcher) Start(rootDir string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsWatcher = fsw
	w.rootDir = rootDir

	// Walk the tree and add all directories.
	if err := w.addRecursive(rootDir); err != nil {
		fsw.Close()
		return err
	}

	go w.eventLoop()
	return nil
}

// Stop gracefully shuts down the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stop)
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
	<-w.stopped

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible dirs
		}
		if d.IsDir() {
			if watchErr := w.fsWatcher.Add(path); watchErr != nil {
				log.Printf("[WARN] watcher: cannot watch %s: %v", path, watchErr)
			}
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[ERROR] watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// On Create, if it's a directory, watch it recursively.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
		}
	}

	relevant := event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0
	if !relevant {
		return
	}
	isbn, ok := ThumbnailISBN(event.Name)
	if !ok {
		return
	}

	w.scheduleFlush(isbn)
}

func (w *Watcher) scheduleFlush(isbn string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[isbn] = true
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		isbns := make([]string, 0, len(w.pending))
		for isbn := range w.pending {
			isbns = append(isbns, isbn)
		}
		w.pending = make(map[string]bool)
		w.mu.Unlock()

		if len(isbns) == 0 || w.callback == nil {
			return
		}
		log.Printf("[INFO] watcher: %d thumbnail change(s) under %s", len(isbns), w.rootDir)
		w.callback(isbns)
	})
}

// ThumbnailISBN extracts the ISBN from a thumbnail file name of the form
// <isbn>.<ext>. It reports false for non-image extensions.
func ThumbnailISBN(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if !imageExtensions[ext] {
		return "", false
	}
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)), true
}
