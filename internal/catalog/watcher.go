package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/logging"
)

// CloneWatcher watches the clone root (<root>/<owner>/<name>) and reports,
// debounced, when clone directories appear or disappear.
type CloneWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	debounce time.Duration
	onChange func()
	logger   *logrus.Entry

	mu    sync.Mutex
	timer *time.Timer
}

// NewCloneWatcher watches root and each owner directory beneath it. A
// missing root is created so later clones are observed.
func NewCloneWatcher(root string, debounce time.Duration, onChange func()) (*CloneWatcher, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, err
	}

	logger := logging.NewLogger("clone-watcher")
	entries, err := os.ReadDir(root)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			if err := watcher.Add(dir); err != nil {
				logger.WithError(err).Warnf("Failed to watch %s", dir)
			}
		}
	}

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	return &CloneWatcher{
		watcher:  watcher,
		root:     filepath.Clean(root),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Start processes events until ctx is cancelled or the watcher is closed.
func (w *CloneWatcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.Close()
			return
		}
	}
}

// depth returns how many path segments name lies below the root.
func (w *CloneWatcher) depth(name string) int {
	rel, err := filepath.Rel(w.root, filepath.Clean(name))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func (w *CloneWatcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

	switch w.depth(event.Name) {
	case 1:
		// New owner directory: watch it for clones.
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.WithError(err).Warnf("Failed to watch %s", event.Name)
				}
			}
		}
		w.schedule()
	case 2:
		w.schedule()
	}
}

// schedule fires onChange once events have been quiet for the debounce window.
func (w *CloneWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if w.onChange != nil {
			w.onChange()
		}
	})
}

// Close stops the watcher and releases resources.
func (w *CloneWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
