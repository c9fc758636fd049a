// Package media turns dropped image files into image-node patches.
package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/ritzau/brandos-canvas/pkg/fields"
)

const (
	// MaxWidth caps the on-canvas width of a dropped image
	MaxWidth = 500.0
	// ChromePadding is the header plus footer height added around the image
	ChromePadding = 60.0
)

// ErrEmptyImage is returned for images without a usable width or height
var ErrEmptyImage = errors.New("image has no size")

// DropPatch computes the data and size patches for an image dropped onto an
// image node. The data patch records the natural size; the node is scaled
// down to MaxWidth keeping the aspect ratio, plus room for the chrome.
func DropPatch(url string, natural fields.Size) (fields.Patch, fields.Size, error) {
	if natural.Width <= 0 || natural.Height <= 0 {
		return nil, fields.Size{}, fmt.Errorf("%s: %w", url, ErrEmptyImage)
	}

	aspect := natural.Height / natural.Width
	width := math.Min(natural.Width, MaxWidth)

	patch := fields.Patch{
		"imageUrl": url,
		"width":    natural.Width,
		"height":   natural.Height,
	}
	size := fields.Size{Width: width, Height: width*aspect + ChromePadding}
	return patch, size, nil
}

// Committer applies a multi-key patch to one node, refusing it while the
// node is locked. *fields.Editor implements it.
type Committer interface {
	Commit(patch fields.Patch, size *fields.Size) error
}

// ApplyDrop sends the drop patch as one combined change. A locked node
// returns fields.ErrLocked and is left untouched.
func ApplyDrop(c Committer, url string, natural fields.Size) error {
	patch, size, err := DropPatch(url, natural)
	if err != nil {
		return err
	}
	return c.Commit(patch, &size)
}

// Probe reads the pixel dimensions of a png, jpeg or gif without decoding it fully
func Probe(r io.Reader) (fields.Size, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return fields.Size{}, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fields.Size{}, ErrEmptyImage
	}
	return fields.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// IsImage reports whether path has an extension Probe understands
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	default:
		return false
	}
}
