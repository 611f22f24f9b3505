package localfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce absorbs bursts of fsnotify events: editors frequently
// emit several Write events for one logical save, so a
// single change is coalesced before firing.
const debounce = 300 * time.Millisecond

// Watcher notifies onChange whenever the bookmark document changes on
// disk outside of this process, letting the sync loop wake up and run
// early instead of waiting for the next poll tick. Watches a single
// file rather than a directory tree, since the local tree lives in
// one document.
type Watcher struct {
	dir      string
	logger   *slog.Logger
	onChange func()

	watcher *fsnotify.Watcher
}

// NewWatcher creates a Watcher over the bookmark document in dir.
// onChange is invoked (never concurrently) after a debounce window
// following one or more write/create events on the document.
func NewWatcher(dir string, logger *slog.Logger, onChange func()) *Watcher {
	return &Watcher{dir: dir, logger: logger, onChange: onChange}
}

// Watch blocks, watching for external changes to the bookmark document
// until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()
	w.watcher = fw

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("ensuring local vault dir exists: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching local vault dir: %w", err)
	}

	w.logger.Info("local document watcher started", slog.String("dir", w.dir))

	target := filepath.Join(w.dir, documentFile)
	var pendingSince time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed unexpectedly")
			}
			if event.Name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pendingSince = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed unexpectedly")
			}
			w.logger.Warn("file watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			if pendingSince.IsZero() {
				continue
			}
			if time.Since(pendingSince) < debounce {
				continue
			}
			pendingSince = time.Time{}
			w.onChange()
		}
	}
}
