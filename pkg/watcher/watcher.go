package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/brandos-canvas/pkg/logging"
	"github.com/ritzau/brandos-canvas/pkg/media"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeImage   ChangeType = iota // image created or rewritten
	ChangeTypeRemoved                   // image removed or renamed away
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeImage:
		return "image"
	case ChangeTypeRemoved:
		return "removed"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

const batchWindow = 100 * time.Millisecond

// FileWatcher watches the media inbox directory for image files
type FileWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	events  chan ChangeEvent
	done    chan struct{}
}

// NewFileWatcher creates a watcher for dir, creating the directory if needed
func NewFileWatcher(dir string) (*FileWatcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve inbox %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox %s: %w", abs, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		dir:     abs,
		events:  make(chan ChangeEvent, 100),
		done:    make(chan struct{}),
	}, nil
}

// Dir returns the absolute inbox path
func (fw *FileWatcher) Dir() string {
	return fw.dir
}

// Start begins watching. The watcher stops and Events closes when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(fw.dir); err != nil {
		_ = fw.watcher.Close()
		return fmt.Errorf("failed to watch inbox %s: %w", fw.dir, err)
	}

	logging.Info("watching media inbox", "path", fw.dir)

	go fw.processEvents(ctx)
	return nil
}

// classify maps an fsnotify event to a change type; false for events to ignore
func classify(event fsnotify.Event) (ChangeType, bool) {
	if !media.IsImage(event.Name) {
		return 0, false
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return ChangeTypeRemoved, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return ChangeTypeImage, true
	default:
		return 0, false
	}
}

// processEvents processes file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.done)
	defer close(fw.events)
	defer fw.watcher.Close()

	batch := make(map[ChangeType][]string)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		for _, t := range []ChangeType{ChangeTypeImage, ChangeTypeRemoved} {
			if len(batch[t]) == 0 {
				continue
			}
			select {
			case fw.events <- ChangeEvent{Type: t, Paths: batch[t], Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		batch = make(map[ChangeType][]string)
	}

	for {
		select {
		case <-ctx.Done():
			flushTimer.Stop()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			t, relevant := classify(event)
			if !relevant {
				continue
			}
			logging.Trace("inbox event", "path", event.Name, "op", event.Op.String())
			batch[t] = append(batch[t], event.Name)
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Done is closed once the watcher has shut down
func (fw *FileWatcher) Done() <-chan struct{} {
	return fw.done
}
