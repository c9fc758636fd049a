// Package chrome defines the framing every node renders inside: header,
// selection and lock state, resize affordance, handle visibility and stacking.
package chrome

import (
	"math"
	"sort"
	"strings"

	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/topology"
)

const (
	// LockGlyph is shown in the header of a locked node
	LockGlyph = "lock"

	IdleHandleOpacity   = 0.35
	ActiveHandleOpacity = 1.0

	zUnselected = 0
	zSelected   = 1000

	refLength = 4
)

// State is the interaction state of one node instance
type State struct {
	Selected bool `json:"selected"`
	Locked   bool `json:"locked"`
	Hovered  bool `json:"hovered,omitempty"`
}

// HeaderView is what the header bar shows
type HeaderView struct {
	Icon      string `json:"icon"`
	Title     string `json:"title"`
	Ref       string `json:"ref"`
	LockGlyph string `json:"lockGlyph,omitempty"`
}

// Ref returns the short reference tag of an instance id: its last four
// characters, upper-cased
func Ref(id string) string {
	r := []rune(id)
	if len(r) > refLength {
		r = r[len(r)-refLength:]
	}
	return strings.ToUpper(string(r))
}

// Header builds the header bar for an instance, nil for headerless types
func Header(d nodetype.Descriptor, id string, locked bool) *HeaderView {
	if d.Headerless {
		return nil
	}
	h := &HeaderView{Icon: d.Icon, Title: d.DisplayTitle, Ref: Ref(id)}
	if locked {
		h.LockGlyph = LockGlyph
	}
	return h
}

// ResizeInteractive reports whether the resize handle accepts drags
func ResizeInteractive(s State) bool {
	return s.Selected && !s.Locked
}

// ClampSize enforces the type's minimum size
func ClampSize(d nodetype.Descriptor, s fields.Size) fields.Size {
	return fields.Size{
		Width:  math.Max(s.Width, d.MinSize.Width),
		Height: math.Max(s.Height, d.MinSize.Height),
	}
}

// Resize maps a drag-resize to a size patch. It reports false when the
// resize handle is not interactive or the type is not resizable.
func Resize(d nodetype.Descriptor, s State, requested fields.Size) (fields.Size, bool) {
	if !d.Resizable || !ResizeInteractive(s) {
		return fields.Size{}, false
	}
	return ClampSize(d, requested), true
}

// HandleOpacity is cosmetic only; faded handles still accept connections
func HandleOpacity(s State) float64 {
	if s.Selected || s.Hovered {
		return ActiveHandleOpacity
	}
	return IdleHandleOpacity
}

// ZIndex places selected nodes above every unselected node
func ZIndex(s State) int {
	if s.Selected {
		return zSelected
	}
	return zUnselected
}

// Stack orders views for rendering: unselected first, then selected, each
// group keeping its input order. The result does not depend on selection recency.
func Stack(views []NodeView) []NodeView {
	out := make([]NodeView, len(views))
	copy(out, views)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// Node is the instance data chrome needs from the canvas engine
type Node struct {
	ID   string
	Type string
	Data map[string]any
	Size fields.Size
}

// NodeView is the fully resolved presentation of one instance
type NodeView struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Broken        bool                   `json:"broken,omitempty"`
	Header        *HeaderView            `json:"header,omitempty"`
	Accent        string                 `json:"accent"`
	Data          map[string]any         `json:"data"`
	Size          fields.Size            `json:"size"`
	MinSize       fields.Size            `json:"minSize"`
	State         State                  `json:"state"`
	ZIndex        int                    `json:"zIndex"`
	Resizable     bool                   `json:"resizable"`
	HandleOpacity float64                `json:"handleOpacity"`
	Handles       []topology.HandlePoint `json:"handles"`
}

// View resolves an instance against the registry. Unknown types render as the
// placeholder with Broken set; nothing here fails the rest of the board.
func View(reg *nodetype.Registry, n Node, s State) NodeView {
	d, err := reg.Resolve(n.Type)
	broken := err != nil
	if broken {
		d = nodetype.Placeholder(n.Type)
	}

	data := d.Normalize(n.Data)
	handles, err := d.Handles(data)
	if err != nil {
		broken = true
		handles = topology.Generic().Resolve(nil)
	}

	return NodeView{
		ID:            n.ID,
		Type:          n.Type,
		Broken:        broken,
		Header:        Header(d, n.ID, s.Locked),
		Accent:        d.Accent,
		Data:          data,
		Size:          ClampSize(d, n.Size),
		MinSize:       d.MinSize,
		State:         s,
		ZIndex:        ZIndex(s),
		Resizable:     d.Resizable && ResizeInteractive(s),
		HandleOpacity: HandleOpacity(s),
		Handles:       handles,
	}
}
