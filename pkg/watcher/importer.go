package watcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ritzau/brandos-canvas/pkg/board"
	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/logging"
	"github.com/ritzau/brandos-canvas/pkg/media"
)

// Board is the part of the store the importer needs
type Board interface {
	Create(typeTag string, data map[string]any, size fields.Size) (board.Instance, error)
	List() []board.Instance
	Editor(id string) (*fields.Editor, error)
}

// Importer turns inbox images into image nodes. A file that is rewritten
// updates the node already showing it instead of adding another.
type Importer struct {
	board Board
}

// NewImporter creates an importer writing to b
func NewImporter(b Board) *Importer {
	return &Importer{board: b}
}

// FileURL returns the imageUrl used for a local file
func FileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// Import drops the image at path onto the board and returns the node id.
// A locked node keeps its image and fields.ErrLocked is returned.
func (im *Importer) Import(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", abs, err)
	}
	natural, err := media.Probe(f)
	_ = f.Close()
	if err != nil {
		return "", fmt.Errorf("%s: %w", abs, err)
	}

	src := FileURL(abs)
	id, found := im.find(src)
	if !found {
		inst, err := im.board.Create("image", map[string]any{"caption": filepath.Base(abs)}, fields.Size{})
		if err != nil {
			return "", err
		}
		id = inst.ID
	}

	ed, err := im.board.Editor(id)
	if err != nil {
		return "", err
	}
	if err := media.ApplyDrop(ed, src, natural); err != nil {
		return id, fmt.Errorf("%s: %w", id, err)
	}
	logging.Info("imported image", "nodeID", id, "path", abs,
		"width", natural.Width, "height", natural.Height, "updated", found)
	return id, nil
}

// Handle imports every image of an event; removals are only logged since
// the node keeps its last image
func (im *Importer) Handle(event ChangeEvent) {
	for _, p := range event.Paths {
		switch event.Type {
		case ChangeTypeImage:
			id, err := im.Import(p)
			switch {
			case errors.Is(err, fields.ErrLocked):
				logging.Info("inbox image skipped, node locked", "nodeID", id, "path", p)
			case err != nil:
				logging.Warn("failed to import image", "path", p, "error", err)
			}
		case ChangeTypeRemoved:
			if id, ok := im.find(FileURL(p)); ok {
				logging.Info("inbox image removed, node kept", "nodeID", id, "path", p)
			}
		}
	}
}

func (im *Importer) find(src string) (string, bool) {
	for _, inst := range im.board.List() {
		if inst.Type == "image" && inst.Data["imageUrl"] == src {
			return inst.ID, true
		}
	}
	return "", false
}

// Run watches dir and imports images until ctx is done
func Run(ctx context.Context, dir string, b Board, quietPeriod, maxWait time.Duration) error {
	fw, err := NewFileWatcher(dir)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	im := NewImporter(b)
	for event := range debouncer.Output() {
		logging.Debug("inbox batch", "type", event.Type.String(), "files", len(event.Paths))
		im.Handle(event)
	}
	<-fw.Done()
	return nil
}
