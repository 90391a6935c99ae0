// Package watcher ingests documents dropped into a watched directory.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veridoc-labs/veridoc/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// DefaultSettle is how long a file must stay quiet after its last write
// before it is uploaded. Editors and downloads write in bursts; acting
// on the first event would ingest half a file.
const DefaultSettle = 500 * time.Millisecond

// contentTypes maps watched file extensions to MIME types understood by
// the extractor registry.
var contentTypes = map[string]string{
	".txt":      "text/plain",
	".csv":      "text/csv",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides the quiet period before upload.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

// Watcher monitors a directory and uploads new or modified files with a
// supported extension to the library.
type Watcher struct {
	library driving.LibraryService
	fsw     *fsnotify.Watcher
	settle  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// New creates a watcher feeding the given library service.
func New(library driving.LibraryService, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		library: library,
		fsw:     fsw,
		settle:  DefaultSettle,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch monitors dir until ctx is cancelled. Files already present when
// watching starts are not ingested; only new writes are.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return err
	}

	logger.Info("Watching %s for new documents", dir)

	for {
		select {
		case <-ctx.Done():
			w.drainPending()
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, supported := contentTypes[normalizedExt(event.Name)]; !supported {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.wg.Wait()
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// schedule arms (or re-arms) the settle timer for a path. Each write
// burst collapses into a single upload once the file goes quiet.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}

	w.pending[path] = time.AfterFunc(w.settle, func() {
		// Registering with the wait group under the lock keeps the
		// shutdown drain from racing a firing timer.
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.wg.Add(1)
		w.mu.Unlock()

		defer w.wg.Done()
		w.upload(ctx, path)
	})
}

// drainPending cancels timers that have not fired yet.
func (w *Watcher) drainPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// upload reads the settled file and hands it to the library.
func (w *Watcher) upload(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Watcher: read %s: %v", path, err)
		return
	}

	contentType := contentTypes[normalizedExt(path)]
	doc, err := w.library.Upload(ctx, filepath.Base(path), contentType, data)
	if err != nil {
		logger.Warn("Watcher: upload %s: %v", path, err)
		return
	}

	logger.Info("Watcher: uploaded %s as %s", filepath.Base(path), doc.ID)
}

func normalizedExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
